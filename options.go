package pushover

import (
	"net/http"
	"strings"
	"time"
)

type Option func(*Options)

type Options struct {
	baseURL        string
	timeout        time.Duration
	userAgent      string
	requestHeaders map[string]string
	httpClient     *http.Client
	requestLogger  RequestLogger
}

func newClientOptions() *Options {
	return &Options{
		baseURL:       defaultBaseURL,
		timeout:       30 * time.Second,
		userAgent:     "pushover-go-client/" + Version,
		requestLogger: &NoopLogger{},
		requestHeaders: map[string]string{
			"Accept": "application/json",
		},
	}
}

// WithBaseURL overrides the API endpoint. Useful for tests and proxies;
// the default is the public Pushover endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		if strings.TrimSpace(baseURL) != "" {
			o.baseURL = baseURL
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		if strings.TrimSpace(userAgent) != "" {
			o.userAgent = userAgent
		}
	}
}

func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" || strings.EqualFold(header, "Accept") || strings.EqualFold(header, "User-Agent") {
			return
		}

		o.requestHeaders[header] = value
	}
}

// WithHTTPClient supplies the underlying [http.Client], replacing the
// default transport and its connection pool.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}
