// Package utils holds small helpers shared by the commands.
package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DeferredWriter holds output back while the TUI owns the terminal and
// replays it once the alt screen is gone. Safe for concurrent use.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write stores data in the internal buffer.
func (d *DeferredWriter) Write(p []byte) (n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Len returns the number of buffered bytes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush writes all buffered data to w and clears the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.buf.Len() == 0 {
		return nil
	}

	_, err := d.buf.WriteTo(w)
	return err
}

// Hook returns a zerolog hook that copies the message of every event at or
// above min into the writer, one "level: message" line per event.
func (d *DeferredWriter) Hook(min zerolog.Level) zerolog.Hook {
	return zerolog.HookFunc(func(_ *zerolog.Event, level zerolog.Level, msg string) {
		if level < min || msg == "" {
			return
		}
		_, _ = fmt.Fprintf(d, "%s: %s\n", strings.ToUpper(level.String()), msg)
	})
}
