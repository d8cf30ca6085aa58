package pushover

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"
)

func TestRecipient_Authenticated_Success(t *testing.T) {
	t.Parallel()

	requests := 0
	var user, token string
	rec := newTestRecipient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_ = r.ParseForm()
		user = r.PostFormValue("user")
		token = r.PostFormValue("token")
		writeJSON(w, http.StatusOK, `{"status":1,"request":"r1","devices":["phone","desktop"]}`)
	})

	ctx := context.Background()

	ok, err := rec.Authenticated(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ok {
		t.Fatal("expected recipient to authenticate")
	}

	if user != testUserToken {
		t.Errorf("expected user=%s, got %s", testUserToken, user)
	}

	if token != testAppToken {
		t.Errorf("expected token=%s, got %s", testAppToken, token)
	}

	devices, err := rec.Devices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(devices, []string{"desktop", "phone"}) {
		t.Errorf("unexpected devices: %v", devices)
	}

	if requests != 1 {
		t.Errorf("expected a single probe request, got %d", requests)
	}
}

func TestRecipient_NoActiveDevices(t *testing.T) {
	t.Parallel()

	rec := newTestRecipient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest,
			`{"status":0,"request":"r1","errors":["user is valid but has no active devices"]}`)
	})

	ctx := context.Background()

	ok, err := rec.Authenticated(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ok {
		t.Error("expected a device-less user to still be authenticated")
	}

	devices, err := rec.Devices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if devices == nil || len(devices) != 0 {
		t.Errorf("expected empty device set, got %v", devices)
	}
}

func TestRecipient_BadUserToken(t *testing.T) {
	t.Parallel()

	requests := 0
	rec := newTestRecipient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(w, http.StatusBadRequest,
			`{"status":0,"request":"r1","errors":["user identifier is not a valid user"],"user":"invalid"}`)
	})

	ctx := context.Background()

	ok, err := rec.Authenticated(ctx)
	if err != nil {
		t.Fatalf("expected rejection to be an answer, not an error: %v", err)
	}

	if ok {
		t.Error("expected recipient to be unauthenticated")
	}

	devices, err := rec.Devices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if devices != nil {
		t.Errorf("expected no device cache, got %v", devices)
	}

	if requests != 1 {
		t.Errorf("expected rejection to be cached, got %d requests", requests)
	}
}

func TestRecipient_BadAppToken(t *testing.T) {
	t.Parallel()

	requests := 0
	rec := newTestRecipient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(w, http.StatusBadRequest,
			`{"status":0,"request":"r1","errors":["application token is invalid"],"token":"invalid"}`)
	})

	ctx := context.Background()

	_, err := rec.Authenticated(ctx)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected the application's rejection to propagate, got %v", err)
	}

	// The application is now known-bad without another request.
	appOK, err := rec.Application().Authenticated(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appOK {
		t.Error("expected application to be downgraded")
	}

	if requests != 1 {
		t.Errorf("expected no extra probe for the application, got %d requests", requests)
	}

	// The recipient itself is still unknown: once the app token is fixed a
	// fresh probe runs.
	if rec.auth != authUnknown {
		t.Errorf("expected recipient auth to be unknown, got %v", rec.auth)
	}
}

func TestRecipient_SetToken_ResetsState(t *testing.T) {
	t.Parallel()

	requests := 0
	rec := newTestRecipient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(w, http.StatusOK, `{"status":1,"request":"r1","devices":["phone"]}`)
	})

	ctx := context.Background()

	if _, err := rec.Authenticated(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := rec.SetToken(otherUserToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := rec.Authenticated(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests != 2 {
		t.Errorf("expected token change to force a fresh probe, got %d requests", requests)
	}

	if err := rec.SetToken("bad token"); err == nil {
		t.Error("expected error for invalid token")
	}
}
