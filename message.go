package pushover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"
)

// Priority of a notification, from lowest (no sound, no banner) to
// emergency (re-alerts until acknowledged).
type Priority int

const (
	PriorityLowest    Priority = -2
	PriorityLow       Priority = -1
	PriorityNormal    Priority = 0
	PriorityHigh      Priority = 1
	PriorityEmergency Priority = 2
)

const (
	maxBodyLength     = 1024
	maxTitleLength    = 250
	maxURLLength      = 512
	maxURLTitleLength = 100
)

// Notification is a single push message addressed to a [Recipient]. Fields
// are validated at assignment time, so a caller discovers invalid input
// before any network call. A Notification may be sent any number of times;
// every [Notification.Send] is an independent attempt that overwrites the
// result state of the previous one.
//
// A Notification is not safe for concurrent mutation while a send is in
// flight on the same instance.
type Notification struct {
	recipient *Recipient

	body      string
	title     string
	html      bool
	url       string
	urlTitle  string
	device    string
	sound     string
	priority  Priority
	timestamp time.Time

	// emergency pins the priority for the emergency subtype.
	emergency bool

	sendID  string
	sentAt  time.Time
	sent    bool
	lastErr *APIError
}

// NewNotification creates an unsent notification with the required body.
func NewNotification(recipient *Recipient, body string) (*Notification, error) {
	if recipient == nil {
		return nil, errors.New("recipient must not be nil")
	}

	n := &Notification{recipient: recipient}
	if err := n.SetBody(body); err != nil {
		return nil, err
	}

	return n, nil
}

// Recipient returns the recipient the notification is addressed to.
func (n *Notification) Recipient() *Recipient {
	return n.recipient
}

// SetBody replaces the message body. The body must be non-empty and at
// most 1024 characters.
func (n *Notification) SetBody(body string) error {
	if body == "" {
		return errors.New("body must not be empty")
	}

	if length := utf8.RuneCountInString(body); length > maxBodyLength {
		return fmt.Errorf("body must be at most %d characters, was %d", maxBodyLength, length)
	}

	n.body = body

	return nil
}

func (n *Notification) Body() string { return n.body }

// SetTitle sets the optional message title, at most 250 characters. An
// empty title clears it.
func (n *Notification) SetTitle(title string) error {
	if length := utf8.RuneCountInString(title); length > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters, was %d", maxTitleLength, length)
	}

	n.title = title

	return nil
}

func (n *Notification) Title() string { return n.title }

// SetHTML marks the body as HTML-formatted.
func (n *Notification) SetHTML(html bool) {
	n.html = html
}

func (n *Notification) HTML() bool { return n.html }

// SetURL sets the optional supplementary URL, at most 512 characters.
func (n *Notification) SetURL(u string) error {
	if length := utf8.RuneCountInString(u); length > maxURLLength {
		return fmt.Errorf("url must be at most %d characters, was %d", maxURLLength, length)
	}

	n.url = u

	return nil
}

func (n *Notification) URL() string { return n.url }

// SetURLTitle sets the display title for the supplementary URL, at most
// 100 characters. It is only meaningful when a URL is also set.
func (n *Notification) SetURLTitle(title string) error {
	if length := utf8.RuneCountInString(title); length > maxURLTitleLength {
		return fmt.Errorf("url title must be at most %d characters, was %d", maxURLTitleLength, length)
	}

	n.urlTitle = title

	return nil
}

func (n *Notification) URLTitle() string { return n.urlTitle }

// SetPriority sets the message priority. The emergency priority is
// reserved for [EmergencyNotification], which in turn cannot be lowered
// below it.
func (n *Notification) SetPriority(priority Priority) error {
	if priority < PriorityLowest || priority > PriorityEmergency {
		return fmt.Errorf("priority must be between %d and %d, was %d", PriorityLowest, PriorityEmergency, priority)
	}

	if n.emergency && priority != PriorityEmergency {
		return errors.New("emergency notifications always use the emergency priority")
	}

	if !n.emergency && priority == PriorityEmergency {
		return errors.New("emergency priority requires an emergency notification")
	}

	n.priority = priority

	return nil
}

func (n *Notification) Priority() Priority { return n.priority }

// SetTimestamp gives the message an explicit point in time instead of the
// send time the API would assign.
func (n *Notification) SetTimestamp(t time.Time) {
	n.timestamp = t.UTC()
}

// SetUnixTimestamp is [Notification.SetTimestamp] for callers holding an
// epoch-seconds value; both normalize to the same canonical representation.
func (n *Notification) SetUnixTimestamp(epoch int64) {
	n.timestamp = epochToTime(epoch)
}

func (n *Notification) Timestamp() time.Time { return n.timestamp }

// SetDevice addresses the notification to a single named device instead of
// all of the recipient's devices. The name is checked against the
// recipient's device set when the recipient is known to be authenticated;
// until then it is accepted with a warning, so notifications can be built
// before the network is reachable.
func (n *Notification) SetDevice(ctx context.Context, device string) error {
	if device == "" {
		n.device = ""
		return nil
	}

	if _, err := n.recipient.authState(ctx); err != nil {
		n.logger().Warnf("pushover: accepting unverified device %q: %v", device, err)
		n.device = device

		return nil
	}

	if member, known := n.recipient.deviceKnown(device); known {
		if !member {
			return fmt.Errorf("device %q is not one of the recipient's devices", device)
		}
	} else {
		n.logger().Warnf("pushover: accepting unverified device %q: recipient is not authenticated", device)
	}

	n.device = device

	return nil
}

func (n *Notification) Device() string { return n.device }

// SetSound selects the notification sound. The sound id is checked against
// the application's sound set when the application is known to be
// authenticated; until then it is accepted with a warning.
func (n *Notification) SetSound(ctx context.Context, sound string) error {
	if sound == "" {
		n.sound = ""
		return nil
	}

	app := n.recipient.app
	if _, err := app.Authenticated(ctx); err != nil {
		n.logger().Warnf("pushover: accepting unverified sound %q: %v", sound, err)
		n.sound = sound

		return nil
	}

	if member, known := app.soundKnown(sound); known {
		if !member {
			return fmt.Errorf("sound %q is not one of the application's sounds", sound)
		}
	} else {
		n.logger().Warnf("pushover: accepting unverified sound %q: application is not authenticated", sound)
	}

	n.sound = sound

	return nil
}

func (n *Notification) Sound() string { return n.sound }

// SendID returns the id the API assigned to the last successful send, or
// "" before one.
func (n *Notification) SendID() string { return n.sendID }

// SentAt returns the server-reported time of the last successful send.
func (n *Notification) SentAt() time.Time { return n.sentAt }

// IsSent reports whether the last send attempt succeeded.
func (n *Notification) IsSent() bool { return n.sent }

// LastError returns the API's rejection of the last send attempt, or nil.
func (n *Notification) LastError() *APIError { return n.lastErr }

// Send delivers the notification. All result state from a previous attempt
// is cleared first, so each call stands alone. It returns true on success.
// An API rejection is stored on the notification and returned via
// [Notification.LastError] rather than as an error; the error return is
// reserved for transport failures, which propagate unmodified.
//
// A send outcome is treated as fresh authentication evidence: success
// marks both the application and the recipient authenticated, and a
// rejection downgrades whichever credential the API blamed.
func (n *Notification) Send(ctx context.Context) (bool, error) {
	_, err := n.doSend(ctx, n.payload())
	return n.sent, err
}

// doSend runs one send attempt with the given payload and applies the
// result and authentication side effects. The raw response is returned on
// success so subtypes can pick up extra fields.
func (n *Notification) doSend(ctx context.Context, params url.Values) (*apiResponse, error) {
	n.sendID = ""
	n.sentAt = time.Time{}
	n.sent = false
	n.lastErr = nil

	resp, err := n.recipient.app.request(ctx, opMessage, params)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		n.lastErr = apiErr

		switch {
		case apiErr.InvalidToken():
			// A bad application token says nothing about the user token,
			// so the recipient drops back to unknown rather than rejected.
			n.recipient.app.markRejected()
			n.recipient.resetAuth()
		case apiErr.InvalidUser():
			n.recipient.markRejected()
		}

		return nil, nil
	case err != nil:
		return nil, err
	}

	n.sent = true
	n.sendID = stringField(resp.body, "request")
	n.sentAt = resp.at

	// A successful send proves both credentials without spending a
	// validation round trip.
	n.recipient.app.markAuthenticated()
	n.recipient.markAuthenticated()

	return resp, nil
}

// payload assembles the request parameters from every currently-set field.
// The application token is injected at request time.
func (n *Notification) payload() url.Values {
	params := url.Values{}
	params.Set("user", n.recipient.Token())
	params.Set("message", n.body)

	if n.title != "" {
		params.Set("title", n.title)
	}

	if n.html {
		params.Set("html", "1")
	}

	if n.url != "" {
		params.Set("url", n.url)
	}

	if n.urlTitle != "" {
		params.Set("url_title", n.urlTitle)
	}

	if n.device != "" {
		params.Set("device", n.device)
	}

	if n.sound != "" {
		params.Set("sound", n.sound)
	}

	if n.priority != PriorityNormal {
		params.Set("priority", strconv.Itoa(int(n.priority)))
	}

	if !n.timestamp.IsZero() {
		params.Set("timestamp", strconv.FormatInt(timeToEpoch(n.timestamp), 10))
	}

	return params
}

func (n *Notification) logger() RequestLogger {
	return n.recipient.app.client.logger
}

func (n *Notification) String() string {
	if n.title != "" {
		return fmt.Sprintf("(%s) %s", n.title, n.body)
	}

	return n.body
}
