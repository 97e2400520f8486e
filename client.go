package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// connectivityNotice is what the operator sees for any transport failure.
const connectivityNotice = "Failed to connect to the server. Please make sure the backend is running."

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 32 << 20

// TransportErrorKind groups transport failures for logging.
type TransportErrorKind string

const (
	TransportTimeout   TransportErrorKind = "timeout"
	TransportRefused   TransportErrorKind = "refused"
	TransportDNS       TransportErrorKind = "dns"
	TransportMalformed TransportErrorKind = "malformed"
	TransportStatus    TransportErrorKind = "status"
	TransportCanceled  TransportErrorKind = "canceled"
	TransportOther     TransportErrorKind = "other"
)

// TransportError means no well-formed reply was obtained.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == TransportStatus {
		return fmt.Sprintf("transport %s: unexpected status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Notice is the operator facing text for the failure.
func (e *TransportError) Notice() string { return connectivityNotice }

// classifyTransportError maps a client error to a TransportError kind.
func classifyTransportError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	kind := TransportOther
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = TransportCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = TransportTimeout
	case errors.As(err, &dnsErr):
		kind = TransportDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = TransportRefused
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = TransportTimeout
	case errors.Is(err, ErrMalformedResponse):
		kind = TransportMalformed
	case strings.Contains(strings.ToLower(err.Error()), "connection refused"):
		kind = TransportRefused
	}
	return &TransportError{Kind: kind, Err: err}
}

// Querier sends one command to the service and classifies the reply.
type Querier interface {
	Query(ctx context.Context, command string) (Response, error)
}

// QueryClient talks to the mascotDB HTTP service.
type QueryClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewQueryClient creates a client for baseURL. A non-positive timeout
// leaves requests bounded only by their context.
func NewQueryClient(baseURL string, timeout time.Duration) *QueryClient {
	return &QueryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the service address without a trailing slash.
func (c *QueryClient) BaseURL() string {
	return c.baseURL
}

type queryRequest struct {
	Command string `json:"command"`
}

// Query posts command to /query. Any error is a *TransportError.
func (c *QueryClient) Query(ctx context.Context, command string) (Response, error) {
	payload, err := json.Marshal(queryRequest{Command: command})
	if err != nil {
		return nil, &TransportError{Kind: TransportOther, Err: fmt.Errorf("encoding request: %w", err)}
	}

	body, err := c.do(ctx, http.MethodPost, "/query", payload)
	if err != nil {
		return nil, err
	}

	resp, err := Classify(body)
	if err != nil {
		return nil, &TransportError{Kind: TransportMalformed, Err: err}
	}
	return resp, nil
}

// Info fetches the service description from GET /.
func (c *QueryClient) Info(ctx context.Context) (ServerInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return ServerInfo{}, err
	}
	var info ServerInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return ServerInfo{}, &TransportError{
			Kind: TransportMalformed,
			Err:  fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	return info, nil
}

func (c *QueryClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Kind: TransportOther, Err: fmt.Errorf("creating request: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Kind:       TransportStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return body, nil
}
