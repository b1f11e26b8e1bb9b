// Package iojson writes command output as JSON for scripts and pipelines.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON shape written when output cannot be encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func encodeError(msg string, jsonErr error) string {
	bits, err := json.Marshal(Error{
		Message: msg,
		Data:    map[string]any{"json_error": jsonErr.Error()},
	})
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, msg)
	}
	return string(bits)
}

// WriteWith writes obj to w as indented JSON. An encoding failure is
// reported to ew as a JSON error object.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(ew, encodeError("encode output", err))
		return werr
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj to w as a single line of JSON.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode line: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
