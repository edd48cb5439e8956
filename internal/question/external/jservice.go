package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Failure classes surfaced to the caller. The client performs no retries of
// its own; retry policy belongs to the fetch orchestrator, which matches
// these with errors.Is.
var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx
	// statuses; a later attempt may succeed.
	ErrUnavailable = errors.New("question source unavailable")
	// ErrMalformedResponse means the payload could not be parsed into raw
	// question records.
	ErrMalformedResponse = errors.New("question source returned a malformed payload")
)

// RawQuestion is one record as returned by the source, not yet confirmed
// distinct. The payload carries more fields (category, airdate, value);
// only the ones consumed downstream are decoded.
type RawQuestion struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// JServiceClient fetches batches of random questions from a jservice-style
// API (GET /api/random?count=N, no API key).
type JServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewJServiceClient(baseURL string, httpClient *http.Client) *JServiceClient {
	if baseURL == "" {
		baseURL = "https://jservice.io"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &JServiceClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Fetch requests a batch of count random questions (count >= 1). The source
// may return fewer records than requested and may repeat records within and
// across calls; deduplication is the caller's concern.
func (c *JServiceClient) Fetch(ctx context.Context, count int) ([]RawQuestion, error) {
	values := url.Values{}
	values.Set("count", strconv.Itoa(count))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/random?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: jservice status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload []RawQuestion
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return payload, nil
}
