package polaris

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
)

func muxRequest(t *testing.T, uri string) *Request {
	t.Helper()
	br := bufio.NewReaderSize(strings.NewReader(uri+"\r\n"), MaxRequestBytes)
	req, err := ReadRequest(br)
	if err != nil {
		t.Fatalf("ReadRequest(%q): %v", uri, err)
	}
	return req
}

func routeTo(name string) Handler {
	return HandlerFunc(func(ctx context.Context, r *Request) (*Response, error) {
		return Success(GeminiMIME, []byte(name)), nil
	})
}

func serveName(t *testing.T, m *Mux, uri string) (Status, string) {
	t.Helper()
	res, err := m.ServeGemini(context.Background(), muxRequest(t, uri))
	if err != nil {
		t.Fatalf("ServeGemini(%q): %v", uri, err)
	}
	if !res.Status.HasBody() {
		return res.Status, ""
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return res.Status, string(body)
}

func TestMuxLongestPrefixWins(t *testing.T) {
	m := NewMux()
	m.Handle("/", routeTo("base"))
	m.Handle("/route", routeTo("short"))
	m.Handle("/route/long", routeTo("long"))

	cases := []struct {
		uri  string
		want string
	}{
		{"gemini://example.org/", "base"},
		{"gemini://example.org/other", "base"},
		{"gemini://example.org/route", "short"},
		{"gemini://example.org/route/sub", "short"},
		{"gemini://example.org/route/long", "long"},
		{"gemini://example.org/route/long/deeper", "long"},
		{"gemini://example.org/rowte", "base"},
	}
	for _, c := range cases {
		if _, got := serveName(t, m, c.uri); got != c.want {
			t.Errorf("%v routed to %q, want %q", c.uri, got, c.want)
		}
	}
}

func TestMuxNoMatch(t *testing.T) {
	m := NewMux()
	m.Handle("/route", routeTo("short"))

	status, _ := serveName(t, m, "gemini://example.org/elsewhere")
	if status != StatusNotFound {
		t.Errorf("status = %v, want %v", status, StatusNotFound)
	}
	// A prefix must match on segment boundaries.
	status, _ = serveName(t, m, "gemini://example.org/routes")
	if status != StatusNotFound {
		t.Errorf("/routes matched /route; status = %v, want %v", status, StatusNotFound)
	}
}

func TestMuxReplaceRoute(t *testing.T) {
	m := NewMux()
	m.Handle("/route", routeTo("old"))
	m.Handle("/route", routeTo("new"))

	if _, got := serveName(t, m, "gemini://example.org/route"); got != "new" {
		t.Errorf("routed to %q, want replacement handler", got)
	}
}

func TestMuxEmptyPath(t *testing.T) {
	m := NewMux()
	m.Handle("/", routeTo("base"))

	if _, got := serveName(t, m, "gemini://example.org"); got != "base" {
		t.Errorf("empty path routed to %q, want base", got)
	}
}
