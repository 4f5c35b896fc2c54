package app

import (
	"io"
	"os"
)

// Option configures the environment run by Run().
type Option func(o *opts)

type opts struct {
	appName string
	signals <-chan os.Signal
	logOut  io.Writer
}

// WithAppName sets the application name used when APP_NAME is not configured.
func WithAppName(name string) Option {
	return func(o *opts) {
		o.appName = name
	}
}

// WithSignalChannel replaces the OS signal channel that triggers shutdown.
func WithSignalChannel(ch <-chan os.Signal) Option {
	return func(o *opts) {
		o.signals = ch
	}
}

// WithLogOutput sets where logs are written. Defaults to stderr, leaving stdout
// for command output.
func WithLogOutput(w io.Writer) Option {
	return func(o *opts) {
		o.logOut = w
	}
}
