package pushover

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testAppToken   = "a0b1c2d3e4f5g6h7i8j9k0l1m2n3o4"
	testUserToken  = "u0v1w2x3y4z5a6b7c8d9e0f1g2h3i4"
	otherUserToken = "q0r1s2t3u4v5w6x7y8z9a0b1c2d3e4"
)

func newTestApplication(t *testing.T, handler http.HandlerFunc, opts ...Option) *Application {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	app, err := NewApplication(testAppToken, append([]Option{WithBaseURL(server.URL)}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error creating application: %v", err)
	}

	return app
}

func newTestRecipient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Recipient {
	t.Helper()

	app := newTestApplication(t, handler, opts...)

	user, err := app.NewRecipient(testUserToken)
	if err != nil {
		t.Fatalf("unexpected error creating recipient: %v", err)
	}

	return user
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// recordingLogger captures warnings for assertions on the accept-with-warning
// validation branch.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Errorf(_ string, _ ...any) {}

func (l *recordingLogger) Warnf(format string, v ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Debugf(_ string, _ ...any) {}
