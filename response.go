package polaris

import (
	"bytes"
	"io"
)

// GeminiMIME is the media type for gemtext documents.
const GeminiMIME = "text/gemini"

// Response is what a handler gives back for one request. Meta's
// meaning depends on the status class: MIME type for success, prompt
// for input, target for redirects, human-readable text for failures.
// Body is consumed at most once by the writer and only if the status
// is in the success class.
type Response struct {
	Status Status
	Meta   string

	// Body is a single-pass byte producer. If it also implements
	// io.Closer it is closed after being drained. Ignored for
	// non-success statuses.
	Body io.Reader

	sent bool
}

// Success builds a success response with an in-memory body.
func Success(mimeType string, body []byte) *Response {
	return &Response{Status: StatusSuccess, Meta: mimeType, Body: bytes.NewReader(body)}
}

// SuccessReader builds a success response streaming its body from r.
func SuccessReader(mimeType string, r io.Reader) *Response {
	return &Response{Status: StatusSuccess, Meta: mimeType, Body: r}
}

// Input asks the client to resubmit with query input.
func Input(prompt string) *Response {
	return &Response{Status: StatusInput, Meta: prompt}
}

// Redirect sends a temporary redirect to target.
func Redirect(target string) *Response {
	return &Response{Status: StatusRedirectTemporary, Meta: target}
}

// RedirectPermanent sends a permanent redirect to target.
func RedirectPermanent(target string) *Response {
	return &Response{Status: StatusRedirectPermanent, Meta: target}
}

// TemporaryFailure builds a 40 response.
func TemporaryFailure(msg string) *Response {
	return &Response{Status: StatusTemporaryFailure, Meta: msg}
}

// PermanentFailure builds a 50 response.
func PermanentFailure(msg string) *Response {
	return &Response{Status: StatusPermanentFailure, Meta: msg}
}

// NotFound builds a 51 response.
func NotFound(msg string) *Response {
	return &Response{Status: StatusNotFound, Meta: msg}
}

// BadRequest builds a 59 response.
func BadRequest(msg string) *Response {
	return &Response{Status: StatusBadRequest, Meta: msg}
}

// SlowDown tells the client to back off.
func SlowDown(msg string) *Response {
	return &Response{Status: StatusSlowDown, Meta: msg}
}

// CertificateRequired asks the client to repeat the request with a
// client certificate.
func CertificateRequired(msg string) *Response {
	return &Response{Status: StatusClientCertificateRequired, Meta: msg}
}
