package polaris

import (
	"errors"
	"fmt"
)

// Protocol-level errors. The server maps these onto status responses:
// framing and encoding problems become a 5x line, handler problems a
// 4x line. Anything else that happens before a request line has been
// assembled is a transport failure and the connection just closes.
var (
	// ErrFraming means the request line never terminated properly:
	// no CRLF within the size budget, or a bare LF.
	ErrFraming = errors.New("gemini: invalid request framing")

	// ErrRequestTooLong is the framing failure where the client sent
	// MaxRequestBytes without a terminator. No further bytes are read.
	ErrRequestTooLong = fmt.Errorf("%w: request too long", ErrFraming)

	// ErrEncoding means the line terminated but its contents are not
	// a usable absolute URI.
	ErrEncoding = errors.New("gemini: malformed request URI")

	// ErrCertMalformed reports a peer certificate that failed the
	// structural self-consistency check. It never fails a request;
	// the connection proceeds with no identity.
	ErrCertMalformed = errors.New("gemini: malformed peer certificate")

	// ErrHandlerTimeout is the synthetic failure recorded when a
	// handler outlives the configured deadline.
	ErrHandlerTimeout = errors.New("gemini: handler timed out")

	// ErrMetaTooLong reports a response meta string over the protocol
	// limit. Oversized meta is a handler bug to surface, never a
	// value to silently truncate.
	ErrMetaTooLong = errors.New("gemini: response meta too long")

	// ErrBodyConsumed reports an attempt to send the same response twice.
	ErrBodyConsumed = errors.New("gemini: response already sent")
)
