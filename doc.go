// Package pushover provides a client library for the Pushover push
// notification API.
//
// The library wraps [github.com/go-resty/resty/v2] for HTTP transport with
// keep-alive connection pooling. All state is held in memory and scoped to
// object lifetime; nothing is persisted and no request is ever retried
// automatically.
//
// # Basic Usage
//
//	app, err := pushover.NewApplication(appToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user, err := app.NewRecipient(userToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := pushover.NewNotification(user, "backup finished")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sent, err := n.Send(ctx)
//	if err != nil {
//	    log.Fatal(err) // transport failure
//	}
//	if !sent {
//	    log.Fatal(n.LastError()) // rejected by the API
//	}
//
// # Authentication
//
// [Application] and [Recipient] tokens are authenticated lazily: no network
// request is made until the first read of [Application.Authenticated],
// [Application.Sounds], [Recipient.Authenticated] or [Recipient.Devices], or
// until a dependent field such as a notification's device or sound is
// validated. The outcome is cached until the token changes or a later
// request proves otherwise; a successful send marks both credentials
// authenticated, and a rejected send downgrades whichever credential the
// API blamed.
//
// # Validation
//
// Every notification field is validated at assignment time, so invalid
// input is reported before any network call. Device and sound names can
// only be checked against the recipient's devices and the application's
// sounds once the relevant credential has authenticated; until then they
// are accepted with a warning through the configured [RequestLogger].
//
// # Emergency Notifications
//
// [EmergencyNotification] sends with the emergency priority and tracks the
// receipt the API returns. [EmergencyNotification.Poll] queries delivery
// state until the notification is acknowledged or expired, and
// [EmergencyNotification.Cancel] stops re-alerting early.
//
// # Errors
//
// Remote validation failures are represented by [APIError], which carries
// the request id, status, human-readable messages, and the inputs the API
// rejected. A failed [Notification.Send] stores the [APIError] on the
// notification instead of returning it, so callers can inspect
// [Notification.LastError] without the call aborting. Transport failures
// are always returned unmodified and never retried.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger] to
// integrate with your logging library. The default [NoopLogger] discards
// all log output. Ensure your implementation redacts credentials and tokens
// from request and response bodies before persisting logs.
package pushover
