// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "shatter",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// Logger returns the shared logger.
func Logger() *log.Logger {
	return get()
}

// SetLevel parses and applies a level name such as "debug" or "warn".
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects log output, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

func LogDebug(msg string, keyvals ...interface{}) {
	get().Debug(msg, keyvals...)
}

func LogInfo(msg string, keyvals ...interface{}) {
	get().Info(msg, keyvals...)
}

func LogWarn(msg string, keyvals ...interface{}) {
	get().Warn(msg, keyvals...)
}

func LogError(msg string, keyvals ...interface{}) {
	get().Error(msg, keyvals...)
}
