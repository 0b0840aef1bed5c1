package polaris

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Mux dispatches requests to handlers by URL path prefix. The longest
// registered prefix wins; "/" catches everything. Requests matching
// no route get a 51.
type Mux struct {
	mu     sync.RWMutex
	routes []route
}

type route struct {
	prefix  string
	handler Handler
}

// NewMux returns an empty mux.
func NewMux() *Mux {
	return &Mux{}
}

// Handle registers handler for the given path prefix. A prefix
// matches its own path exactly and any path below it. Registering the
// same prefix twice replaces the earlier handler.
func (m *Mux) Handle(prefix string, handler Handler) {
	if prefix == "" || prefix[0] != '/' {
		prefix = "/" + prefix
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.routes {
		if r.prefix == prefix {
			m.routes[i].handler = handler
			return
		}
	}
	m.routes = append(m.routes, route{prefix, handler})
	sort.Slice(m.routes, func(i, j int) bool {
		return len(m.routes[i].prefix) > len(m.routes[j].prefix)
	})
}

// HandleFunc registers a function handler for the given path prefix.
func (m *Mux) HandleFunc(prefix string, f func(ctx context.Context, r *Request) (*Response, error)) {
	m.Handle(prefix, HandlerFunc(f))
}

func (m *Mux) match(path string) Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.routes {
		if path == r.prefix || r.prefix == "/" ||
			strings.HasPrefix(path, strings.TrimSuffix(r.prefix, "/")+"/") {
			return r.handler
		}
	}
	return nil
}

// ServeGemini implements Handler.
func (m *Mux) ServeGemini(ctx context.Context, r *Request) (*Response, error) {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	h := m.match(path)
	if h == nil {
		return NotFound("No route matches"), nil
	}
	return h.ServeGemini(ctx, r)
}
