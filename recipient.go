package pushover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
)

// Recipient is an end-user credential scoped to one [Application]. It
// authenticates lazily and caches the set of devices notifications can be
// addressed to.
type Recipient struct {
	app *Application

	mu      sync.Mutex
	token   string
	auth    authStatus
	devices []string
}

func (r *Recipient) String() string {
	return "pushover user " + r.Token()
}

// Application returns the application this recipient is scoped to.
func (r *Recipient) Application() *Application {
	return r.app
}

// Token returns the recipient's API token.
func (r *Recipient) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.token
}

// SetToken replaces the recipient's API token, invalidating all cached
// authentication state.
func (r *Recipient) SetToken(token string) error {
	if !tokenPattern.MatchString(token) {
		return fmt.Errorf("invalid user token %q: must be 30 alphanumeric characters", token)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = token
	r.auth = authUnknown
	r.devices = nil

	return nil
}

// Authenticated reports whether the user token is valid for the owning
// application, probing the API on first use and caching the outcome. A
// rejection of the application token itself is returned as an [APIError]
// and leaves this recipient's state unknown.
func (r *Recipient) Authenticated(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auth == authUnknown {
		if _, err := r.probeLocked(ctx); err != nil {
			return false, err
		}
	}

	return r.auth == authOK, nil
}

// Devices returns the names of the recipient's registered devices. Reading
// it authenticates the recipient if that has not happened yet. A valid
// user with nothing to deliver to yields an empty, non-nil slice; nil is
// returned for an unauthenticated recipient.
func (r *Recipient) Devices(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auth == authUnknown || (r.auth == authOK && r.devices == nil) {
		if _, err := r.probeLocked(ctx); err != nil {
			return nil, err
		}
	}

	if r.auth != authOK {
		return nil, nil
	}

	return slices.Clone(r.devices), nil
}

// authState resolves and returns the recipient's authentication state,
// probing if it is unknown.
func (r *Recipient) authState(ctx context.Context) (authStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auth == authUnknown {
		return r.probeLocked(ctx)
	}

	return r.auth, nil
}

// probeLocked validates the user token against the owning application.
// Callers hold r.mu.
func (r *Recipient) probeLocked(ctx context.Context) (authStatus, error) {
	params := url.Values{}
	params.Set("user", r.token)

	resp, err := r.app.request(ctx, opValidate, params)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.InvalidToken() {
			// The application token is the one at fault. Nothing is known
			// about this recipient until that is fixed.
			r.app.markRejected()
			r.auth = authUnknown
			r.devices = nil

			return authUnknown, apiErr
		}

		// The API reports "valid user, zero devices" as an error-shaped
		// response. Only the human-readable message text distinguishes it
		// from a rejected user token; matching on it is brittle but it is
		// the only signal the API provides.
		if apiErr.hasMessage("no active devices") {
			r.auth = authOK
			r.devices = []string{}

			return authOK, nil
		}

		r.auth = authRejected
		r.devices = nil

		return authRejected, nil
	case err != nil:
		return authUnknown, err
	}

	r.auth = authOK
	r.devices = devicesFromBody(resp.body)

	return authOK, nil
}

// markAuthenticated records fresh proof that the token is valid, such as a
// successful send. The device cache is kept; it is filled lazily.
func (r *Recipient) markAuthenticated() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.auth = authOK
}

// markRejected records fresh proof that the token is invalid and drops the
// device cache.
func (r *Recipient) markRejected() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.auth = authRejected
	r.devices = nil
}

// resetAuth drops back to unknown, used when the owning application's
// token turns out to be bad and nothing can be concluded about this
// recipient.
func (r *Recipient) resetAuth() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.auth = authUnknown
	r.devices = nil
}

// deviceKnown reports whether the device name is in the cached device set,
// and whether the set is known at all.
func (r *Recipient) deviceKnown(device string) (member, known bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auth != authOK || r.devices == nil {
		return false, false
	}

	return slices.Contains(r.devices, device), true
}

func devicesFromBody(body map[string]any) []string {
	raw, ok := body["devices"].([]any)
	if !ok {
		return []string{}
	}

	devices := make([]string, 0, len(raw))
	for _, d := range raw {
		if s, ok := d.(string); ok {
			devices = append(devices, s)
		}
	}

	slices.Sort(devices)

	return devices
}
