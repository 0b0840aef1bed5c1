package polaris

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxRequestBytes bounds the request line, CRLF included. The limit is
// enforced byte by byte while reading so a client cannot stream an
// unbounded line before the first terminator.
const MaxRequestBytes = 1024

// Request is one parsed Gemini request. It is built once per
// connection and never mutated afterwards.
type Request struct {
	// URL is the parsed absolute request URI.
	URL *url.URL

	// RawURI is the request line exactly as received, terminator
	// stripped.
	RawURI string

	// Identity is the client's certificate-derived identity, or nil
	// if no usable certificate was presented.
	Identity *PeerIdentity

	// RemoteAddr is the network address of the client.
	RemoteAddr net.Addr
}

// requestReader buffers a transport for ReadRequest. The transport is
// capped at the budget before buffering: bufio refills are
// budget-unaware, and on a stream that delivers in small chunks an
// unbounded refill would pull fresh bytes past the limit even though
// readRequestLine never consumes them.
func requestReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(io.LimitReader(r, MaxRequestBytes), MaxRequestBytes)
}

// readRequestLine reads one CRLF-terminated line within the byte
// budget. Framing and encoding problems come back as ErrFraming or
// ErrEncoding; a raw read error is returned as-is, meaning the
// transport died before a line was assembled and no response is owed.
func readRequestLine(br *bufio.Reader) (string, error) {
	buf := make([]byte, 0, MaxRequestBytes)
	for len(buf) < MaxRequestBytes {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		buf = append(buf, b)
		if b != '\n' {
			continue
		}
		if len(buf) < 2 || buf[len(buf)-2] != '\r' {
			return "", fmt.Errorf("%w: line not terminated with CRLF", ErrFraming)
		}
		return string(buf[:len(buf)-2]), nil
	}
	return "", ErrRequestTooLong
}

// parseRequestURI validates the stripped request line as an absolute
// URI and parses it.
func parseRequestURI(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty request", ErrEncoding)
	}
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrEncoding)
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return nil, fmt.Errorf("%w: control character in URI", ErrEncoding)
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: URI not absolute", ErrEncoding)
	}
	return u, nil
}

// ReadRequest reads and validates one request line from br. On success
// the returned request echoes the URI exactly as sent.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	raw, err := readRequestLine(br)
	if err != nil {
		return nil, err
	}
	u, err := parseRequestURI(raw)
	if err != nil {
		return nil, err
	}
	return &Request{URL: u, RawURI: raw}, nil
}

// PathSegments splits the URL path on "/", dropping empty segments.
func (r *Request) PathSegments() []string {
	var segs []string
	for _, s := range strings.Split(r.URL.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
