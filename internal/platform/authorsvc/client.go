package authorsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"bookmesh/internal/httpx"
	"bookmesh/internal/platform/resilience"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound means the author service answered that the id does not exist.
	ErrNotFound = errors.New("author not found upstream")
	// ErrTimeout means a single lookup attempt ran past its deadline.
	ErrTimeout = resilience.ErrAttemptTimeout
	// ErrUnavailable means the author could not be fetched within the retry budget.
	ErrUnavailable = errors.New("author service unavailable")
)

// UnavailableError carries how many attempts were spent before giving up.
type UnavailableError struct {
	AuthorID int64
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("author %d: %v after %d attempt(s): %v", e.AuthorID, ErrUnavailable, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Author is the author record as served by GET /authors/{id}.
type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type envelope struct {
	Success bool   `json:"success"`
	Data    Author `json:"data"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	policy     resilience.Policy
}

// NewClient builds a client for the author service at baseURL.
// Per-attempt deadlines come from the policy, so the http.Client carries no timeout of its own.
func NewClient(baseURL string, policy resilience.Policy) *Client {
	return NewClientWithHTTP(&http.Client{}, baseURL, policy)
}

func NewClientWithHTTP(httpClient *http.Client, baseURL string, policy resilience.Policy) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		policy:     policy,
	}
}

// FetchAuthor returns the author with the given id, retrying transient failures per the client policy.
func (c *Client) FetchAuthor(ctx context.Context, id int64) (Author, error) {
	p := c.policy
	p.OnRetry = func(attempt int, err error) {
		log.Ctx(ctx).Warn().
			Err(err).
			Int64("author_id", id).
			Int("attempt", attempt).
			Int("max_attempts", c.policy.MaxAttempts).
			Msg("author lookup failed, retrying")
		if c.policy.OnRetry != nil {
			c.policy.OnRetry(attempt, err)
		}
	}

	var attempts atomic.Int32
	author, err := resilience.Do(ctx, p, func(ctx context.Context) (Author, error) {
		attempts.Add(1)
		return c.get(ctx, id)
	})
	if err == nil {
		return author, nil
	}

	if errors.Is(err, ErrNotFound) {
		return Author{}, fmt.Errorf("author %d: %w", id, ErrNotFound)
	}

	var exhausted *resilience.ExhaustedError
	if errors.As(err, &exhausted) {
		return Author{}, &UnavailableError{AuthorID: id, Attempts: exhausted.Attempts, Err: exhausted.Err}
	}
	return Author{}, &UnavailableError{AuthorID: id, Attempts: int(attempts.Load()), Err: err}
}

func (c *Client) get(ctx context.Context, id int64) (Author, error) {
	u := c.baseURL + "/authors/" + strconv.FormatInt(id, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Author{}, resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := httpx.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Author{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return Author{}, resilience.Permanent(ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Author{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return Author{}, resilience.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if ctx.Err() != nil {
			return Author{}, err
		}
		return Author{}, resilience.Permanent(fmt.Errorf("decode author: %w", err))
	}
	if !body.Success || body.Data.ID == 0 {
		return Author{}, resilience.Permanent(fmt.Errorf("author %d: response carries no author", id))
	}
	return body.Data, nil
}
