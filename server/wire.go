package server

// Requests and responses travel over the daemon socket as frames: a 4-byte
// big-endian payload length followed by that many bytes of one JSON object.
// Frames larger than MaxFrameSize are refused in both directions.

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// MaxFrameSize bounds the JSON payload of a single frame.
const MaxFrameSize = 16 << 20

const headerLen = 4

var requestSeq atomic.Uint64

// NextID returns a process-unique request id.
func NextID() string {
	return fmt.Sprintf("r%d", requestSeq.Add(1))
}

// WriteFrame encodes msg and writes header and payload in one call.
func WriteFrame(w io.Writer, msg map[string]any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds %d byte limit", len(payload), MaxFrameSize)
	}
	frame := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerLen:], payload)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads and decodes one frame. io.EOF is returned as is when the
// peer hangs up between frames.
func ReadFrame(r io.Reader) (map[string]any, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds %d byte limit", n, MaxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}
