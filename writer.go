package polaris

import (
	"fmt"
	"io"
)

// MaxMetaBytes bounds the meta field of a response status line.
const MaxMetaBytes = 1024

// WriteResponse serializes r onto w: one status line, then the body
// if and only if the status is in the success class. The status line
// is written in a single call so the client never observes a partial
// line. Returns the framing/validation errors before anything hits
// the wire; once body streaming has begun a failure is terminal and
// the caller just closes the connection.
func WriteResponse(w io.Writer, r *Response) error {
	if r.sent {
		return ErrBodyConsumed
	}
	if !r.Status.Valid() {
		return fmt.Errorf("gemini: status %d outside protocol range", r.Status)
	}
	if len(r.Meta) > MaxMetaBytes {
		return fmt.Errorf("%w: %d bytes", ErrMetaTooLong, len(r.Meta))
	}
	for i := 0; i < len(r.Meta); i++ {
		if c := r.Meta[i]; c == '\r' || c == '\n' {
			return fmt.Errorf("gemini: line break in response meta")
		}
	}
	r.sent = true

	// The body is done with either way: streamed for successes,
	// suppressed unread for everything else. A closer attached to a
	// failure response must not leak.
	if c, ok := r.Body.(io.Closer); ok {
		defer c.Close()
	}

	if _, err := fmt.Fprintf(w, "%d %s\r\n", r.Status, r.Meta); err != nil {
		return err
	}
	if !r.Status.HasBody() || r.Body == nil {
		return nil
	}
	_, err := io.Copy(w, r.Body)
	return err
}
