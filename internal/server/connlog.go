package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
)

type connInfoKey struct{}

// connInfo records whether a connection ever reached the handler.
type connInfo struct {
	remote string
	mu     sync.Mutex
	served bool
}

func (c *connInfo) markServed() {
	c.mu.Lock()
	c.served = true
	c.mu.Unlock()
}

func (c *connInfo) wasServed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.served
}

// connTracker logs connections that close without a served request:
// malformed requests (answered 400 by net/http) and clients that hang up mid-request.
type connTracker struct {
	logger *log.Logger
	mu     sync.Mutex
	conns  map[net.Conn]*connInfo
}

func newConnTracker(logger *log.Logger) *connTracker {
	return &connTracker{logger: logger, conns: make(map[net.Conn]*connInfo)}
}

// connContext is installed as http.Server.ConnContext.
func (t *connTracker) connContext(ctx context.Context, c net.Conn) context.Context {
	info := &connInfo{remote: c.RemoteAddr().String()}
	t.mu.Lock()
	t.conns[c] = info
	t.mu.Unlock()
	return context.WithValue(ctx, connInfoKey{}, info)
}

// connState is installed as http.Server.ConnState.
func (t *connTracker) connState(c net.Conn, state http.ConnState) {
	if state != http.StateClosed && state != http.StateHijacked {
		return
	}
	t.mu.Lock()
	info := t.conns[c]
	delete(t.conns, c)
	t.mu.Unlock()
	if info != nil && !info.wasServed() {
		t.logger.Printf("connection from %s closed without a complete request", info.remote)
	}
}

// logRequests writes one line per request and marks the connection as served.
func logRequests(logger *log.Logger, status int, bodyLen int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(connInfoKey{}).(*connInfo); ok {
			info.markServed()
		}
		next.ServeHTTP(w, r)
		logger.Printf("%s %q %d %d", r.RemoteAddr, r.Method+" "+r.RequestURI+" "+r.Proto, status, bodyLen)
	})
}
