// Package config reads settings from SEXP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	sexp "github.com/rphilander/sexp/core"
	"github.com/rphilander/sexp/golispx"
)

type Config struct {
	SockPath  string
	HTTPAddr  string
	DBPath    string
	SessionID string
	Reader    string
	MaxDepth  int
	MaxTraces int
	LogLevel  logrus.Level
}

func Defaults() Config {
	return Config{
		SockPath:  "/tmp/sexp.sock",
		HTTPAddr:  ":8080",
		Reader:    "native",
		MaxDepth:  10000,
		MaxTraces: 1000,
		LogLevel:  logrus.InfoLevel,
	}
}

// Load reads the configuration through getenv (normally os.Getenv). Bad
// values keep their defaults and are reported together in the error.
func Load(getenv func(string) string) (Config, error) {
	c := Defaults()
	var errs []error

	if v := getenv("SEXP_SOCK"); v != "" {
		c.SockPath = v
	}
	if v := getenv("SEXP_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	c.DBPath = getenv("SEXP_DB")
	c.SessionID = getenv("SEXP_SESSION")

	switch v := getenv("SEXP_READER"); v {
	case "":
	case "native", "golisp":
		c.Reader = v
	default:
		errs = append(errs, fmt.Errorf("SEXP_READER: unknown reader %q", v))
	}

	if v := getenv("SEXP_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("SEXP_MAX_DEPTH: invalid value %q", v))
		} else {
			c.MaxDepth = n
		}
	}
	if v := getenv("SEXP_MAX_TRACES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("SEXP_MAX_TRACES: invalid value %q", v))
		} else {
			c.MaxTraces = n
		}
	}
	if v := getenv("SEXP_LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEXP_LOG_LEVEL: %w", err))
		} else {
			c.LogLevel = lvl
		}
	}
	return c, errors.Join(errs...)
}

// ReaderFunc returns the reader named by c.Reader.
func (c Config) ReaderFunc() sexp.Reader {
	if c.Reader == "golisp" {
		return golispx.ParseAll
	}
	return sexp.ParseAll
}

// SessionOptions turns the evaluation settings into session options.
func (c Config) SessionOptions() []sexp.Option {
	return []sexp.Option{
		sexp.WithReader(c.ReaderFunc()),
		sexp.WithMaxDepth(c.MaxDepth),
		sexp.WithMaxTraces(c.MaxTraces),
	}
}
