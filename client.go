package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Version of the library, reported in the default User-Agent header.
const Version = "1.0.0"

const defaultBaseURL = "https://api.pushover.net/1/"

const (
	opValidate = "validate"
	opSound    = "sound"
	opMessage  = "message"
	opReceipt  = "receipt"
	opCancel   = "cancel"
)

type apiEndpoint struct {
	method string
	path   string
}

// endpoints is the fixed request table for the API. Paths with a %s verb
// take a receipt id. The table is never mutated at runtime.
var endpoints = map[string]apiEndpoint{
	opValidate: {http.MethodPost, "users/validate.json"},
	opSound:    {http.MethodGet, "sounds.json"},
	opMessage:  {http.MethodPost, "messages.json"},
	opReceipt:  {http.MethodGet, "receipts/%s.json"},
	opCancel:   {http.MethodPost, "receipts/%s/cancel.json"},
}

// apiResponse is a decoded 2xx response.
type apiResponse struct {
	// body is the decoded JSON response body.
	body map[string]any

	// at is the server-reported response time from the Date header.
	at time.Time

	// limits holds the rate-limit counters when the response carried them.
	limits *RateLimits
}

// apiClient performs authenticated requests against the remote endpoint. It
// issues at most one request per call and never retries; transport
// failures are returned unmodified.
type apiClient struct {
	http   *resty.Client
	logger RequestLogger
}

func newAPIClient(options *Options) *apiClient {
	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(options.baseURL)
	rc.SetTimeout(options.timeout)
	rc.SetHeader("User-Agent", options.userAgent)
	rc.SetHeaders(options.requestHeaders)

	return &apiClient{
		http:   rc,
		logger: options.requestLogger,
	}
}

// request performs the named API operation. Params are sent form-encoded
// for POST operations and as query parameters for GET operations. A 4xx
// response decodes into an *APIError; any other non-2xx status synthesizes
// one with status 0.
func (c *apiClient) request(ctx context.Context, op string, params url.Values, pathArgs ...any) (*apiResponse, error) {
	ep, ok := endpoints[op]
	if !ok {
		return nil, fmt.Errorf("unknown API operation %q", op)
	}

	path := ep.path
	if len(pathArgs) > 0 {
		path = fmt.Sprintf(ep.path, pathArgs...)
	}

	req := c.http.R().SetContext(ctx)
	if ep.method == http.MethodGet {
		req.SetQueryParamsFromValues(params)
	} else {
		req.SetFormDataFromValues(params)
	}

	c.logger.Debugf("pushover: %s %s", ep.method, path)

	resp, err := req.Execute(ep.method, path)
	if err != nil {
		c.logger.Errorf("pushover: %s %s failed: %v", ep.method, path, err)
		return nil, err
	}

	code := resp.StatusCode()
	c.logger.Debugf("pushover: %s %s returned %d", ep.method, path, code)

	if code != http.StatusOK && (code < 400 || code > 499) {
		return nil, &APIError{
			Status:    0,
			Messages:  []string{fmt.Sprintf("unknown error (%d)", code)},
			BadInputs: make(map[string]string),
		}
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", path, err)
	}

	if code != http.StatusOK {
		apiErr := newAPIError(body)
		c.logger.Warnf("pushover: %s %s rejected: %v", ep.method, path, apiErr)
		return nil, apiErr
	}

	at, err := parseHTTPDate(resp.Header().Get("Date"))
	if err != nil {
		// A missing or malformed Date header is not worth failing the
		// call over; local time is close enough.
		at = time.Now().UTC()
	}

	return &apiResponse{
		body:   body,
		at:     at,
		limits: rateLimitsFromHeaders(resp.Header()),
	}, nil
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func intField(body map[string]any, key string) int {
	switch v := body[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func boolField(body map[string]any, key string) bool {
	switch v := body[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return false
	}
}

// timeField decodes an epoch-seconds field; 0 or a missing field yields
// the zero time.
func timeField(body map[string]any, key string) time.Time {
	epoch := intField(body, key)
	if epoch == 0 {
		return time.Time{}
	}

	return epochToTime(int64(epoch))
}
