package pushover

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// tokenPattern is the shape of every API token: exactly 30 alphanumeric
// characters.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{30}$`)

// RateLimits holds the application message quota as last reported by the
// API.
type RateLimits struct {
	// Limit is the number of messages allowed per billing period.
	Limit int

	// Remaining is the number of messages left in the current period.
	Remaining int

	// Reset is when the quota resets.
	Reset time.Time
}

func rateLimitsFromHeaders(h http.Header) *RateLimits {
	if h.Get("X-Limit-App-Limit") == "" {
		return nil
	}

	limit, _ := strconv.Atoi(h.Get("X-Limit-App-Limit"))
	remaining, _ := strconv.Atoi(h.Get("X-Limit-App-Remaining"))
	reset, _ := strconv.ParseInt(h.Get("X-Limit-App-Reset"), 10, 64)

	return &RateLimits{
		Limit:     limit,
		Remaining: remaining,
		Reset:     epochToTime(reset),
	}
}

// Application is the sending program's credential with the API. It
// authenticates lazily and caches the set of valid notification sounds and
// the rate-limit counters. An Application may be shared by any number of
// Recipients and Notifications.
type Application struct {
	client *apiClient

	mu     sync.Mutex
	token  string
	auth   authStatus
	sounds map[string]string
	limits *RateLimits
}

// NewApplication creates an Application from its API token. The token is
// validated locally against the 30-character alphanumeric pattern; no
// network request is made until the credential is first used.
func NewApplication(token string, opts ...Option) (*Application, error) {
	if !tokenPattern.MatchString(token) {
		return nil, fmt.Errorf("invalid application token %q: must be 30 alphanumeric characters", token)
	}

	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Application{
		client: newAPIClient(options),
		token:  token,
	}, nil
}

func (a *Application) String() string {
	return "pushover application " + a.Token()
}

// Token returns the application's API token.
func (a *Application) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.token
}

// SetToken replaces the application's API token, invalidating all cached
// authentication state.
func (a *Application) SetToken(token string) error {
	if !tokenPattern.MatchString(token) {
		return fmt.Errorf("invalid application token %q: must be 30 alphanumeric characters", token)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.token = token
	a.auth = authUnknown
	a.sounds = nil

	return nil
}

// Authenticated reports whether the application token is valid, probing
// the API on first use and caching the outcome. Transport failures leave
// the cached state unknown and are returned to the caller.
func (a *Application) Authenticated(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.auth == authUnknown {
		if _, err := a.probeLocked(ctx); err != nil {
			return false, err
		}
	}

	return a.auth == authOK, nil
}

// Sounds returns the notification sounds the API accepts for this
// application, keyed by sound id with display names as values. Reading it
// authenticates the application if that has not happened yet; nil is
// returned for an unauthenticated application.
func (a *Application) Sounds(ctx context.Context) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.auth == authUnknown || (a.auth == authOK && a.sounds == nil) {
		if _, err := a.probeLocked(ctx); err != nil {
			return nil, err
		}
	}

	if a.auth != authOK {
		return nil, nil
	}

	return maps.Clone(a.sounds), nil
}

// RateLimits returns the most recently observed message quota, or nil if
// no response has reported one yet.
func (a *Application) RateLimits() *RateLimits {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limits == nil {
		return nil
	}

	limits := *a.limits

	return &limits
}

// NewRecipient derives a user credential scoped to this application.
func (a *Application) NewRecipient(token string) (*Recipient, error) {
	if !tokenPattern.MatchString(token) {
		return nil, fmt.Errorf("invalid user token %q: must be 30 alphanumeric characters", token)
	}

	return &Recipient{
		app:   a,
		token: token,
	}, nil
}

// probeLocked resolves the application's authentication state. The API has
// no dedicated application-validation call, so listing sounds doubles as
// the probe: a rejection naming the token settles the question, and a
// success fills the sound cache in the same round trip. Callers hold a.mu.
func (a *Application) probeLocked(ctx context.Context) (authStatus, error) {
	params := url.Values{}
	params.Set("token", a.token)

	resp, err := a.client.request(ctx, opSound, params)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.InvalidToken() {
			a.auth = authRejected
			a.sounds = nil

			return authRejected, nil
		}

		return authUnknown, err
	case err != nil:
		return authUnknown, err
	}

	a.auth = authOK
	a.sounds = soundsFromBody(resp.body)
	if resp.limits != nil {
		a.limits = resp.limits
	}

	return authOK, nil
}

// request performs an API operation on behalf of this application,
// injecting its token and capturing any rate-limit counters the response
// carries.
func (a *Application) request(ctx context.Context, op string, params url.Values, pathArgs ...any) (*apiResponse, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", a.Token())

	resp, err := a.client.request(ctx, op, params, pathArgs...)
	if resp != nil && resp.limits != nil {
		a.storeLimits(resp.limits)
	}

	return resp, err
}

func (a *Application) storeLimits(limits *RateLimits) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.limits = limits
}

// markAuthenticated records fresh proof that the token is valid, such as a
// successful send. The sound cache is kept; it is filled lazily.
func (a *Application) markAuthenticated() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.auth = authOK
}

// markRejected records fresh proof that the token is invalid and drops the
// sound cache.
func (a *Application) markRejected() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.auth = authRejected
	a.sounds = nil
}

// soundKnown reports whether the sound id is in the cached sound set, and
// whether the set is known at all.
func (a *Application) soundKnown(sound string) (member, known bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.auth != authOK || a.sounds == nil {
		return false, false
	}

	_, member = a.sounds[sound]

	return member, true
}

func soundsFromBody(body map[string]any) map[string]string {
	raw, ok := body["sounds"].(map[string]any)
	if !ok {
		return map[string]string{}
	}

	sounds := make(map[string]string, len(raw))
	for id, name := range raw {
		if s, ok := name.(string); ok {
			sounds[id] = s
		}
	}

	return sounds
}
