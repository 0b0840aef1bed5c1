package polaris

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPort is the registered Gemini port.
const DefaultPort = "1965"

// DefaultTimeout bounds each blocking step of a connection: the
// handshake, the request read, the handler, and the response write.
const DefaultTimeout = 30 * time.Second

// Handler answers one request. The context carries the per-request
// deadline; a handler that ignores it is abandoned on timeout and its
// result discarded. Returning an error (or panicking) yields a
// generic 40 line to the client.
type Handler interface {
	ServeGemini(ctx context.Context, r *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, r *Request) (*Response, error)

// ServeGemini calls f.
func (f HandlerFunc) ServeGemini(ctx context.Context, r *Request) (*Response, error) {
	return f(ctx, r)
}

// Server serves the Gemini protocol over TLS. Fields are read-only
// once serving starts; connections share nothing else.
type Server struct {
	Addr    string  // TCP address to listen on, ":1965" if empty
	Handler Handler // handler to invoke, required

	// Timeout bounds each blocking step of a connection.
	// DefaultTimeout if zero.
	Timeout time.Duration

	// TLSConfig optionally supplies ready TLS material. When set,
	// ListenAndServe uses it instead of loading a key pair; it is
	// cloned and adjusted to request (never require) a client
	// certificate with no chain verification.
	TLSConfig *tls.Config

	// Logger for per-connection lines. Package default if nil.
	Logger *log.Logger
}

// Connection lifecycle. Each connection walks the sequence once;
// stateFailed short-circuits to stateRespond with a synthesized
// failure. No state is ever revisited.
type connState int

const (
	stateHandshake connState = iota
	stateParse
	stateDispatch
	stateRespond
	stateFailed
	stateClosed
)

type conn struct {
	server *Server
	rwc    *tls.Conn
	id     string // correlates log lines for one connection
	state  connState
}

func (s *Server) newConn(rwc *tls.Conn) *conn {
	id, _ := gonanoid.New()
	return &conn{server: s, rwc: rwc, id: id, state: stateHandshake}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *Server) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// tlsConfig builds the listener config: offer cert, request a client
// certificate, verify nothing about it. Self-signed peers are the
// protocol's normal case, so chain validation stays off and the
// structural check happens later in IdentityFromDER.
func (s *Server) tlsConfig(certs ...tls.Certificate) *tls.Config {
	var cfg *tls.Config
	if s.TLSConfig != nil {
		cfg = s.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	cfg.Certificates = append(cfg.Certificates, certs...)
	cfg.MinVersion = tls.VersionTLS12
	cfg.ClientAuth = tls.RequestClientCert
	return cfg
}

// ListenAndServeTLS loads the key pair and serves on s.Addr.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("gemini: loading certs: %w", err)
	}
	return s.listenAndServe(s.tlsConfig(cert))
}

// ListenAndServe serves on s.Addr using s.TLSConfig, which must carry
// at least one certificate.
func (s *Server) ListenAndServe() error {
	if s.TLSConfig == nil || len(s.TLSConfig.Certificates) == 0 {
		return errors.New("gemini: ListenAndServe requires TLSConfig with a certificate")
	}
	return s.listenAndServe(s.tlsConfig())
}

func (s *Server) listenAndServe(cfg *tls.Config) error {
	addr := s.Addr
	if addr == "" {
		addr = ":" + DefaultPort
	}
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return fmt.Errorf("gemini: listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Accept fails. Every accepted
// connection gets its own goroutine; a broken handshake or request on
// one connection never disturbs the accept loop.
func (s *Server) Serve(ln net.Listener) error {
	defer ln.Close()
	if s.Handler == nil {
		return errors.New("gemini: Serve requires a Handler")
	}
	for {
		rw, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("gemini: accept: %w", err)
		}
		tc, ok := rw.(*tls.Conn)
		if !ok {
			rw.Close()
			return errors.New("gemini: Serve requires a TLS listener")
		}
		go s.newConn(tc).serve()
	}
}

// serve walks one connection through the state machine. Exactly one
// of two things reaches the client: a single well-formed status line
// (possibly followed by a success body), or an abrupt close.
func (c *conn) serve() {
	defer func() {
		if v := recover(); v != nil {
			c.server.logf("[%v] panic serving %v: %v", c.id, c.rwc.RemoteAddr(), v)
		}
		c.state = stateClosed
		c.rwc.Close()
	}()

	timeout := c.server.timeout()
	c.rwc.SetDeadline(time.Now().Add(timeout))
	if err := c.rwc.Handshake(); err != nil {
		// No framing exists below TLS; nothing can be sent back.
		c.server.logf("[%v] handshake with %v failed: %v", c.id, c.rwc.RemoteAddr(), err)
		return
	}

	var identity *PeerIdentity
	if peers := c.rwc.ConnectionState().PeerCertificates; len(peers) > 0 {
		var err error
		identity, err = IdentityFromDER(peers[0].Raw)
		if err != nil {
			// Degrade to anonymous rather than failing the request.
			c.server.logf("[%v] ignoring peer certificate from %v: %v", c.id, c.rwc.RemoteAddr(), err)
		}
	}

	c.state = stateParse
	req, err := ReadRequest(requestReader(c.rwc))
	if err != nil {
		res, ok := responseForParseError(err)
		if !ok {
			// Transport died before a line was assembled.
			c.server.logf("[%v] read from %v failed: %v", c.id, c.rwc.RemoteAddr(), err)
			return
		}
		c.state = stateFailed
		c.respond("", res)
		return
	}
	req.Identity = identity
	req.RemoteAddr = c.rwc.RemoteAddr()

	c.state = stateDispatch
	res := c.dispatch(req)

	c.respond(req.RawURI, res)
}

// responseForParseError classifies a ReadRequest failure. The second
// return is false for transport errors, which get no response at all.
func responseForParseError(err error) (*Response, bool) {
	switch {
	case errors.Is(err, ErrRequestTooLong):
		return BadRequest("Request too long"), true
	case errors.Is(err, ErrFraming):
		return BadRequest("Malformed request"), true
	case errors.Is(err, ErrEncoding):
		return BadRequest("URL invalid"), true
	}
	return nil, false
}

// dispatch runs the handler under the configured deadline and always
// comes back with something writable. Handler errors, panics and
// timeouts all collapse to a generic temporary failure; the client
// never learns more than that.
func (c *conn) dispatch(req *Request) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), c.server.timeout())
	defer cancel()

	type result struct {
		res *Response
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- result{err: fmt.Errorf("handler panic: %v", v)}
			}
		}()
		res, err := c.server.Handler.ServeGemini(ctx, req)
		done <- result{res: res, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.state = stateFailed
			c.server.logf("[%v] handler failed for %v: %v", c.id, req.RawURI, r.err)
			return TemporaryFailure("Server error")
		}
		if r.res == nil {
			c.state = stateFailed
			c.server.logf("[%v] handler returned no response for %v", c.id, req.RawURI)
			return TemporaryFailure("Server error")
		}
		return r.res
	case <-ctx.Done():
		// The handler goroutine is abandoned; its eventual result
		// lands in the buffered channel and is discarded.
		c.state = stateFailed
		c.server.logf("[%v] %v for %v", c.id, ErrHandlerTimeout, req.RawURI)
		return TemporaryFailure("Server timeout")
	}
}

// respond writes the response and logs the exchange. A write failure
// mid-body is terminal: no retry, no second status line.
func (c *conn) respond(rawURI string, res *Response) {
	c.state = stateRespond
	c.rwc.SetWriteDeadline(time.Now().Add(c.server.timeout()))
	if err := WriteResponse(c.rwc, res); err != nil {
		c.server.logf("[%v] write to %v failed: %v", c.id, c.rwc.RemoteAddr(), err)
		return
	}
	c.server.logf("[%v] %v requested %q; responded %v %v", c.id, c.rwc.RemoteAddr(), rawURI, res.Status, res.Meta)
}
