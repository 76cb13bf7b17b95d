// Package httpclient provides the instrumented HTTP client every
// outbound API adapter is built on. Requests are traced via otelhttp
// and counted per provider.
package httpclient

import (
	"net/http"
	"time"
)

// ClientOptions holds client-level configuration.
type ClientOptions struct {
	client         *http.Client
	providerName   string
	requestTimeout *time.Duration
	headers        map[string]string
	baseURL        string
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

// NewClientOptions applies the given options over defaults.
func NewClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithProviderName names the upstream provider in metrics and traces.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) {
		o.providerName = name
	}
}

// WithRequestTimeout bounds each request end to end.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.requestTimeout = &timeout
	}
}

// WithHeaders sets default headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL prefixes relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(o *ClientOptions) {
		o.client = client
	}
}

// ResponseErrorHandler maps an upstream response to a domain error.
// Returning nil accepts the response.
type ResponseErrorHandler func(statusCode int, body []byte) error

// Label is a metric dimension attached to a request.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a label.
func NewLabel(key, value string) *Label {
	return &Label{Key: key, Value: value}
}

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	responseErrorHandler ResponseErrorHandler
	labels               []*Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// NewRequestOptions applies the given options.
func NewRequestOptions(opts ...RequestOption) *RequestOptions {
	options := &RequestOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithResponseErrorHandler installs a provider-specific error mapper.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *RequestOptions) {
		o.responseErrorHandler = handler
	}
}

// WithLabels attaches metric dimensions to the request counter.
func WithLabels(labels ...*Label) RequestOption {
	return func(o *RequestOptions) {
		o.labels = labels
	}
}
