package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"

	// EndpointPath is appended to the base URL.
	EndpointPath = "user_suggest"

	maxBodyBytes = 1 << 20
)

// ErrMalformedResponse is returned when a body is not a list of strings.
var ErrMalformedResponse = errors.New("malformed suggestion response")

// StatusError reports a non-2xx answer from the endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// HTTPFetcher fetches suggestions over HTTP.
type HTTPFetcher struct {
	endpoint   *url.URL
	client     *http.Client
	accept     string
	resultPath string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMsgpack asks the endpoint for msgpack bodies instead of JSON.
func WithMsgpack() FetcherOption {
	return func(f *HTTPFetcher) {
		f.accept = ContentTypeMsgpack
	}
}

// WithResultPath reads the suggestion array from a gjson path inside
// a JSON body, e.g. "data.suggestions". Empty means the body itself.
func WithResultPath(path string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.resultPath = path
	}
}

// NewHTTPFetcher builds a fetcher for `<baseURL>/user_suggest`.
func NewHTTPFetcher(baseURL string, opts ...FetcherOption) (*HTTPFetcher, error) {
	if baseURL == "" {
		return nil, errors.New("empty base url")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in base url", base.Scheme)
	}

	f := &HTTPFetcher{
		endpoint: base.JoinPath(EndpointPath),
		client:   &http.Client{Timeout: 5 * time.Second},
		accept:   ContentTypeJSON,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Endpoint returns the URL requests are sent to, without query.
func (f *HTTPFetcher) Endpoint() string {
	return f.endpoint.String()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, prefix string) ([]string, error) {
	u := *f.endpoint
	q := u.Query()
	q.Set("prefix", prefix)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", f.accept)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	log.Debugf("GET %s took %v (%d bytes)", u.String(), time.Since(start), len(body))

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == ContentTypeMsgpack {
		return decodeMsgpack(body)
	}
	return decodeJSON(body, f.resultPath)
}

func decodeMsgpack(body []byte) ([]string, error) {
	var out []string
	if err := msgpack.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func decodeJSON(body []byte, resultPath string) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}

	result := gjson.ParseBytes(body)
	if resultPath != "" {
		result = result.Get(resultPath)
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrMalformedResponse, result.Type)
	}

	elems := result.Array()
	out := make([]string, 0, len(elems))
	for i, el := range elems {
		if el.Type != gjson.String {
			return nil, fmt.Errorf("%w: element %d is %s", ErrMalformedResponse, i, el.Type)
		}
		out = append(out, el.Str)
	}
	return out, nil
}
