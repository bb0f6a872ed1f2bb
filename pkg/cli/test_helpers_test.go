package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// captureStdout redirects os.Stdout to a pipe and returns a function
// that restores stdout and returns the captured output.
// Uses a goroutine to read concurrently, avoiding pipe buffer deadlocks.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	// Read concurrently to avoid pipe buffer deadlock on large outputs
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return func() string {
		_ = w.Close()
		<-done
		os.Stdout = old
		return buf.String()
	}
}

// newFakeConsole starts a console API stub and isolates the test from the
// user's real config and environment.
func newFakeConsole(t *testing.T, handler http.Handler) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("UHE_HOST", "")
	t.Setenv("UHE_OUTPUT", "")
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}
