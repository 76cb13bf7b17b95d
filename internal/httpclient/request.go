package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request is a fluent request builder. Setters return the builder so
// call sites read as one chain ending in Get or Post.
type Request interface {
	Get(ctx context.Context, url string) (*Response, error)
	Post(ctx context.Context, url string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetQueryParams(params map[string]string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with the fully-read body.
type Response struct {
	*http.Response
	body   []byte
	result any
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError reports whether the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Result returns the value SetResult unmarshaled into, if any.
func (r *Response) Result() any {
	return r.result
}

type requestBuilder struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
	queryParams    map[string]string
	body           any
	result         any
	errorHandler   ResponseErrorHandler
	labels         []*Label
}

func (r *requestBuilder) Get(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, url)
}

func (r *requestBuilder) Post(ctx context.Context, url string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, url)
}

// SetBody sets the request body. Structs and maps are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.queryParams == nil {
		r.queryParams = make(map[string]string)
	}
	r.queryParams[key] = value
	return r
}

func (r *requestBuilder) SetQueryParams(params map[string]string) Request {
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	return r
}

// SetResult sets the destination for JSON unmarshaling of the body.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) execute(ctx context.Context, method, url string) (*Response, error) {
	ctx, span := r.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
			attribute.String("provider", r.providerName),
		),
	)
	defer span.End()

	fullURL := url
	if r.baseURL != "" && !strings.HasPrefix(url, "http") {
		fullURL = strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(url, "/")
	}

	if len(r.queryParams) > 0 {
		values := neturl.Values{}
		for k, v := range r.queryParams {
			values.Set(k, v)
		}
		separator := "?"
		if strings.Contains(fullURL, "?") {
			separator = "&"
		}
		fullURL += separator + values.Encode()
	}

	bodyReader, err := r.bodyReader()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.recordError(ctx, span, err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &Response{
		Response: resp,
		body:     body,
	}

	// A malformed body is recorded but not fatal; the error handler or
	// caller decides based on status and raw bytes.
	if r.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
		} else {
			response.result = r.result
		}
	}

	if response.IsError() {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.error.status", resp.Status),
		)
	}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			r.recordMetrics(ctx, false)
			span.SetStatus(codes.Error, handlerErr.Error())
			return response, handlerErr
		}
	}

	r.recordMetrics(ctx, !response.IsError())
	return response, nil
}

func (r *requestBuilder) bodyReader() (io.Reader, error) {
	if r.body == nil {
		return nil, nil
	}

	switch b := r.body.(type) {
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		if r.headers == nil {
			r.headers = make(map[string]string)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		return bytes.NewReader(jsonBody), nil
	}
}

func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)

	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false)
}

func (r *requestBuilder) recordMetrics(ctx context.Context, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", r.providerName),
		attribute.Bool("success", success),
	}
	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}
	r.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
