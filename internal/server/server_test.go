package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// syncBuffer guards a bytes.Buffer written by Serve and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startTestServer(t *testing.T) (*Server, string, *syncBuffer) {
	t.Helper()
	return startTestServerWithLog(t, io.Discard)
}

func startTestServerWithLog(t *testing.T, logOut io.Writer) (*Server, string, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	srv, err := New(Config{
		Host:     "127.0.0.1",
		Port:     0,
		Stdout:   out,
		ErrorLog: log.New(logOut, "[hellodock] ", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		// Serve may not have started before the test finished.
		if err := <-done; err != nil && !errors.Is(err, errNotListening) {
			t.Errorf("Serve() = %v", err)
		}
	})
	return srv, "http://" + srv.Addr().String(), out
}

func fetch(t *testing.T, method, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader("body"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

// waitForLog polls until logs holds n occurrences of substr. Log lines are
// written after the response reaches the client.
func waitForLog(t *testing.T, logs *syncBuffer, substr string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(logs.String(), substr) < n {
		if time.Now().After(deadline) {
			t.Fatalf("log has fewer than %d of %q: %q", n, substr, logs.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8000", cfg.Addr())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	for _, port := range []int{-1, 65536} {
		if _, err := New(Config{Host: "127.0.0.1", Port: port}); err == nil {
			t.Errorf("New(port=%d) should fail", port)
		}
	}
}

func TestServer_StateTransitions(t *testing.T) {
	srv, err := New(Config{Host: "127.0.0.1", Port: 0, Stdout: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	if srv.State() != Stopped {
		t.Errorf("initial State() = %v, want stopped", srv.State())
	}
	if srv.Addr() != nil {
		t.Errorf("Addr() before Listen = %v, want nil", srv.Addr())
	}
	if err := srv.Serve(); err == nil {
		t.Error("Serve() before Listen should fail")
	}
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	defer srv.Shutdown(context.Background())
	if srv.State() != Listening {
		t.Errorf("State() after Listen = %v, want listening", srv.State())
	}
	if err := srv.Listen(); err == nil {
		t.Error("second Listen() should fail")
	}
}

func TestServer_GetRoot(t *testing.T) {
	srv, url, out := startTestServer(t)

	resp, body := fetch(t, http.MethodGet, url+"/")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q", ct)
	}
	if string(body) != DefaultBody {
		t.Errorf("body = %q", body)
	}

	port := srv.Addr().(*net.TCPAddr).Port
	want := "Starting server on port " + strconv.Itoa(port) + "...\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
}

func TestServer_MethodAndPathIgnored(t *testing.T) {
	_, url, _ := startTestServer(t)

	_, want := fetch(t, http.MethodGet, url+"/")
	resp, got := fetch(t, http.MethodPost, url+"/anything/path?x=1")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("POST body = %q, want %q", got, want)
	}
}

func TestServer_SequentialRequestsIdentical(t *testing.T) {
	_, url, _ := startTestServer(t)

	_, first := fetch(t, http.MethodGet, url+"/")
	for i := 0; i < 100; i++ {
		resp, body := fetch(t, http.MethodGet, url+"/")
		if resp.StatusCode != http.StatusOK || !bytes.Equal(body, first) {
			t.Fatalf("request %d: status=%d body=%q", i, resp.StatusCode, body)
		}
	}
}

func TestServer_ConcurrentRequests(t *testing.T) {
	_, url, _ := startTestServer(t)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			resp, err := http.Post(url+"/concurrent", "text/plain", strings.NewReader("x"))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK || string(body) != DefaultBody {
				return errors.New("unexpected response: " + resp.Status + " " + string(body))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestServer_MalformedRequestDoesNotStopService(t *testing.T) {
	logs := &syncBuffer{}
	srv, url, _ := startTestServerWithLog(t, logs)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	_, _ = conn.Write([]byte("NOT HTTP AT ALL\r\n\r\n"))
	_, _ = io.ReadAll(conn)
	conn.Close()

	// Client that hangs up mid-request.
	conn, err = net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	_, _ = conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n"))
	conn.Close()

	resp, body := fetch(t, http.MethodGet, url+"/")
	if resp.StatusCode != http.StatusOK || string(body) != DefaultBody {
		t.Errorf("after faults: status=%d body=%q", resp.StatusCode, body)
	}

	// Both faulty connections are logged once the server notices them closing.
	waitForLog(t, logs, "closed without a complete request", 2)
	if !strings.Contains(logs.String(), "[hellodock] ") {
		t.Errorf("log lines missing prefix: %q", logs.String())
	}
}

func TestServer_LogsRequests(t *testing.T) {
	logs := &syncBuffer{}
	_, url, _ := startTestServerWithLog(t, logs)

	fetch(t, http.MethodPost, url+"/anything/path?x=1")
	waitForLog(t, logs, `"POST /anything/path?x=1 HTTP/1.1" 200 `+strconv.Itoa(len(DefaultBody)), 1)
	if strings.Contains(logs.String(), "closed without a complete request") {
		t.Errorf("served connection logged as a fault: %q", logs.String())
	}
}

func TestServer_ShutdownReturnsToStopped(t *testing.T) {
	srv, err := New(Config{Host: "127.0.0.1", Port: 0, Stdout: io.Discard, ErrorLog: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	addr := srv.Addr().String()
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil && !errors.Is(err, errNotListening) {
		t.Errorf("Serve() = %v", err)
	}
	if srv.State() != Stopped {
		t.Errorf("State() after Shutdown = %v, want stopped", srv.State())
	}
	if srv.Addr() != nil {
		t.Errorf("Addr() after Shutdown = %v, want nil", srv.Addr())
	}
	if conn, err := net.Dial("tcp", addr); err == nil {
		conn.Close()
		t.Errorf("listener at %s still accepting after Shutdown", addr)
	}
}

func TestServer_BindFailure(t *testing.T) {
	first, _, _ := startTestServer(t)
	port := first.Addr().(*net.TCPAddr).Port

	out := &syncBuffer{}
	second, err := New(Config{Host: "127.0.0.1", Port: port, Stdout: out})
	if err != nil {
		t.Fatal(err)
	}
	err = second.Run()
	if !errors.Is(err, ErrBindFailure) {
		t.Fatalf("Run() = %v, want ErrBindFailure", err)
	}
	if second.State() != Stopped {
		t.Errorf("State() = %v, want stopped", second.State())
	}
	if strings.Contains(out.String(), "Starting server") {
		t.Errorf("startup message printed on bind failure: %q", out.String())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Stopped, "stopped"},
		{Listening, "listening"},
		{State(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
