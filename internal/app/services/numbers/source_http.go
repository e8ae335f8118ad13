package numbers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/drawworks/lotto/pkg/logger"
)

const randomPath = "/api/v1.0/random"

// maxResponseBytes bounds how much of the provider payload is read; the
// provider is untrusted.
const maxResponseBytes = 1 << 20

// Source produces a raw numeric sequence from an external random-number
// provider. Implementations make exactly one attempt per call; retry policy
// belongs to the scheduler.
type Source interface {
	Fetch(ctx context.Context, count, min, max int) ([]int, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, count, min, max int) ([]int, error)

func (f SourceFunc) Fetch(ctx context.Context, count, min, max int) ([]int, error) {
	if f == nil {
		return nil, ErrSourceUnavailable
	}
	return f(ctx, count, min, max)
}

// HTTPSource calls the external random-number HTTP API.
type HTTPSource struct {
	client   *http.Client
	endpoint *url.URL
	log      *logger.Logger
}

// NewHTTPSource constructs a source for the provided endpoint. The client's
// timeout bounds the single outbound call so a hung provider cannot stall a
// settlement tick.
func NewHTTPSource(client *http.Client, endpoint string, log *logger.Logger) (*HTTPSource, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("number source endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse number source endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("number-source")
	}
	return &HTTPSource{client: client, endpoint: parsed, log: log}, nil
}

// Fetch requests count random integers in [min, max]. Any transport failure,
// non-2xx status, or malformed payload yields ErrSourceUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context, count, min, max int) ([]int, error) {
	requestURL := *s.endpoint
	requestURL.Path = strings.TrimSuffix(requestURL.Path, "/") + randomPath
	q := requestURL.Query()
	q.Set("min", strconv.Itoa(min))
	q.Set("max", strconv.Itoa(max))
	q.Set("count", strconv.Itoa(count))
	requestURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build number source request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: payload is not a JSON array", ErrSourceUnavailable)
	}

	values := parsed.Array()
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("%w: non-numeric payload element %q", ErrSourceUnavailable, v.Raw)
		}
		out = append(out, int(v.Int()))
	}

	s.log.Debugf("fetched %d raw values from number source", len(out))
	return out, nil
}
