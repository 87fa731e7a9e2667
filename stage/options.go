package stage

import (
	"io"
	"log"
	"os"
	"time"
)

// Options configures a Stage.
type Options struct {
	// DirMode is the permission used for created directories.
	DirMode os.FileMode
	// FileMode is the permission of committed content and metadata files.
	FileMode os.FileMode
	// Drivers maps formats to content drivers.
	Drivers *Drivers
	// XtraMeta providers run before every write.
	XtraMeta []XtraMeta
	// Logger receives one line per failed record.
	Logger *log.Logger
	// Clock feeds CTime providers that have no clock of their own.
	Clock func() time.Time
}

// Option modifies Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		DirMode:  0o755,
		FileMode: 0o644,
		XtraMeta: DefaultXtraMeta(),
		Logger:   log.New(io.Discard, "", 0),
		Clock:    time.Now,
	}
}

// WithDirMode sets the permission of created directories.
func WithDirMode(mode os.FileMode) Option {
	return func(o *Options) {
		o.DirMode = mode
	}
}

// WithFileMode sets the permission of committed files.
func WithFileMode(mode os.FileMode) Option {
	return func(o *Options) {
		o.FileMode = mode
	}
}

// WithDrivers replaces the driver registry.
func WithDrivers(d *Drivers) Option {
	return func(o *Options) {
		o.Drivers = d
	}
}

// WithXtraMeta replaces the extra-metadata providers. Passing none disables
// them.
func WithXtraMeta(x ...XtraMeta) Option {
	return func(o *Options) {
		o.XtraMeta = x
	}
}

// WithLogger routes failure logs to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithClock sets the time source of CTime providers.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}
