package pushover

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// minRetry is the fastest re-alert cadence the API accepts.
	minRetry = 30 * time.Second

	// maxExpire is the longest the API will keep re-alerting.
	maxExpire = 24 * time.Hour
)

// EmergencyNotification is a notification with the emergency priority: the
// recipient is re-alerted every retry interval until they acknowledge it
// or the expire window runs out. The API issues a receipt for each
// successful send, which [EmergencyNotification.Poll] queries for delivery
// state and [EmergencyNotification.Cancel] uses to stop re-alerting early.
type EmergencyNotification struct {
	Notification

	retry       time.Duration
	expire      time.Duration
	callbackURL string

	receiptID       string
	lastPolledAt    time.Time
	lastDeliveredAt time.Time

	acknowledged   bool
	acknowledgedAt time.Time
	acknowledgedBy *Recipient

	expired   bool
	expiresAt time.Time

	calledBack   bool
	calledBackAt time.Time
}

// NewEmergencyNotification creates an unsent emergency notification. The
// retry interval must be at least 30 seconds and the expire window
// positive and at most 24 hours.
func NewEmergencyNotification(recipient *Recipient, body string, retry, expire time.Duration) (*EmergencyNotification, error) {
	base, err := NewNotification(recipient, body)
	if err != nil {
		return nil, err
	}

	base.emergency = true
	base.priority = PriorityEmergency

	e := &EmergencyNotification{Notification: *base}
	if err := e.SetRetry(retry); err != nil {
		return nil, err
	}

	if err := e.SetExpire(expire); err != nil {
		return nil, err
	}

	return e, nil
}

// SetRetry sets the re-alert interval, at least 30 seconds.
func (e *EmergencyNotification) SetRetry(retry time.Duration) error {
	if retry < minRetry {
		return fmt.Errorf("retry must be at least %s, was %s", minRetry, retry)
	}

	e.retry = retry

	return nil
}

func (e *EmergencyNotification) Retry() time.Duration { return e.retry }

// SetExpire sets how long the API keeps re-alerting, positive and at most
// 24 hours.
func (e *EmergencyNotification) SetExpire(expire time.Duration) error {
	if expire <= 0 || expire > maxExpire {
		return fmt.Errorf("expire must be positive and at most %s, was %s", maxExpire, expire)
	}

	e.expire = expire

	return nil
}

func (e *EmergencyNotification) Expire() time.Duration { return e.expire }

// SetCallbackURL sets the URL the API calls when the notification is
// acknowledged.
func (e *EmergencyNotification) SetCallbackURL(u string) error {
	if length := len(u); length > maxURLLength {
		return fmt.Errorf("callback url must be at most %d characters, was %d", maxURLLength, length)
	}

	e.callbackURL = u

	return nil
}

func (e *EmergencyNotification) CallbackURL() string { return e.callbackURL }

// ReceiptID returns the receipt issued for the last successful send, or ""
// before one.
func (e *EmergencyNotification) ReceiptID() string { return e.receiptID }

// LastPolledAt returns the server time of the last receipt query.
func (e *EmergencyNotification) LastPolledAt() time.Time { return e.lastPolledAt }

// LastDeliveredAt returns when the notification was last delivered to the
// recipient, as reported by the receipt.
func (e *EmergencyNotification) LastDeliveredAt() time.Time { return e.lastDeliveredAt }

// IsAcknowledged reports whether the recipient has acknowledged the
// notification.
func (e *EmergencyNotification) IsAcknowledged() bool { return e.acknowledged }

func (e *EmergencyNotification) AcknowledgedAt() time.Time { return e.acknowledgedAt }

// AcknowledgedBy returns who acknowledged the notification: the recipient
// itself on a token match, or a fresh [Recipient] bound to the same
// application for a third-party acknowledger in a delivery group.
func (e *EmergencyNotification) AcknowledgedBy() *Recipient { return e.acknowledgedBy }

// IsExpired reports whether the re-alert window has run out.
func (e *EmergencyNotification) IsExpired() bool { return e.expired }

// ExpiresAt returns when the re-alert window runs out.
func (e *EmergencyNotification) ExpiresAt() time.Time { return e.expiresAt }

// IsCalledBack reports whether the API has pinged the callback URL.
func (e *EmergencyNotification) IsCalledBack() bool { return e.calledBack }

func (e *EmergencyNotification) CalledBackAt() time.Time { return e.calledBackAt }

// Send delivers the notification, resetting all receipt state from any
// previous attempt first. On success the receipt id from the response is
// recorded for polling. Result and error semantics are those of
// [Notification.Send].
func (e *EmergencyNotification) Send(ctx context.Context) (bool, error) {
	e.receiptID = ""
	e.lastPolledAt = time.Time{}
	e.lastDeliveredAt = time.Time{}
	e.acknowledged = false
	e.acknowledgedAt = time.Time{}
	e.acknowledgedBy = nil
	e.expired = false
	e.expiresAt = time.Time{}
	e.calledBack = false
	e.calledBackAt = time.Time{}

	resp, err := e.doSend(ctx, e.payload())
	if resp != nil {
		e.receiptID = stringField(resp.body, "receipt")
	}

	return e.sent, err
}

// Poll queries the receipt for delivery state. A notification that has not
// been successfully sent is sent first; if that still yields no receipt,
// [ErrNoReceipt] is returned. Once acknowledged, expired and called back
// are all true the poll is a no-op: the cached terminal state is returned
// without a network request.
//
// Poll returns true while the notification is still pending, that is,
// neither acknowledged nor expired.
func (e *EmergencyNotification) Poll(ctx context.Context) (bool, error) {
	if !e.sent {
		if _, err := e.Send(ctx); err != nil {
			return false, err
		}
	}

	if e.receiptID == "" {
		return false, ErrNoReceipt
	}

	if !(e.acknowledged && e.expired && e.calledBack) {
		resp, err := e.recipient.app.request(ctx, opReceipt, nil, e.receiptID)
		if err != nil {
			return false, err
		}

		e.applyReceipt(resp)
	}

	return !(e.acknowledged || e.expired), nil
}

// Cancel asks the API to stop re-alerting for this notification. It
// requires a receipt from a successful send and returns whether the API
// reports the cancellation succeeded. Cancellation is a remote state
// transition: the receipt reflects it only once the API marks the
// notification expired, so cached poll state is unchanged until then.
func (e *EmergencyNotification) Cancel(ctx context.Context) (bool, error) {
	if e.receiptID == "" {
		return false, ErrNoReceipt
	}

	resp, err := e.recipient.app.request(ctx, opCancel, nil, e.receiptID)
	if err != nil {
		return false, err
	}

	return intField(resp.body, "status") == 1, nil
}

func (e *EmergencyNotification) applyReceipt(resp *apiResponse) {
	e.lastPolledAt = resp.at

	e.acknowledged = boolField(resp.body, "acknowledged")
	e.acknowledgedAt = timeField(resp.body, "acknowledged_at")
	e.expired = boolField(resp.body, "expired")
	e.expiresAt = timeField(resp.body, "expires_at")
	e.calledBack = boolField(resp.body, "called_back")
	e.calledBackAt = timeField(resp.body, "called_back_at")
	e.lastDeliveredAt = timeField(resp.body, "last_delivered_at")

	if token := stringField(resp.body, "acknowledged_by"); token != "" {
		if token == e.recipient.Token() {
			e.acknowledgedBy = e.recipient
		} else if by, err := e.recipient.app.NewRecipient(token); err == nil {
			e.acknowledgedBy = by
		} else {
			e.logger().Warnf("pushover: receipt %s acknowledged by malformed token %q", e.receiptID, token)
		}
	}
}

// payload extends the base parameters with the emergency re-alert fields.
func (e *EmergencyNotification) payload() url.Values {
	params := e.Notification.payload()
	params.Set("retry", strconv.Itoa(int(e.retry.Seconds())))
	params.Set("expire", strconv.Itoa(int(e.expire.Seconds())))

	if e.callbackURL != "" {
		params.Set("callback", e.callbackURL)
	}

	return params
}
