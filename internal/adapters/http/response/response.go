// Package response writes JSON response bodies.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ContentType is the header value set on every JSON response.
const ContentType = "application/json"

// Writer serializes payloads onto one http.ResponseWriter.
type Writer struct {
	w http.ResponseWriter
}

// New wraps w.
func New(w http.ResponseWriter) *Writer {
	return &Writer{w: w}
}

// Respond writes payload as the whole body with a 200 status.
func (rw *Writer) Respond(payload any) error {
	return rw.RespondStatus(http.StatusOK, payload)
}

// RespondStatus marshals payload and writes it in a single Write, with no
// trailing newline. Nothing is written if marshalling fails.
func (rw *Writer) RespondStatus(status int, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	rw.w.Header().Set("Content-Type", ContentType)
	rw.w.WriteHeader(status)
	if _, err := rw.w.Write(body); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// ErrorBody is the envelope for error responses.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondError writes an ErrorBody. A nil err uses the status text as message.
func (rw *Writer) RespondError(status int, code string, err error) error {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	return rw.RespondStatus(status, ErrorBody{Code: code, Message: msg})
}
