package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/factreply/internal/capture"
	"github.com/factreply/internal/retry"
	"github.com/factreply/pkg/models"
)

const (
	defaultTwitterURL = "https://api.twitter.com"
	startTimeLayout   = "2006-01-02T15:04:05Z"
)

// TwitterConfig configures the X/Twitter v2 client
type TwitterConfig struct {
	BaseURL           string
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string

	// MaxResults is the mentions page size (5..100). Only the first page is read.
	MaxResults        int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	Retry             retry.Config
}

// TwitterClient implements Client against the X/Twitter v2 REST API
type TwitterClient struct {
	cfg         TwitterConfig
	httpClient  *http.Client
	signer      *oauth1Signer
	rateLimiter *rate.Limiter
}

// NewTwitterClient creates a client. User-context credentials are needed for
// SelfID and CreateReply; a bearer token alone only allows reads.
func NewTwitterClient(cfg TwitterConfig) (*TwitterClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTwitterURL
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > 100 {
		cfg.MaxResults = 100
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &TwitterClient{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
	if cfg.APIKey != "" && cfg.APISecret != "" && cfg.AccessToken != "" && cfg.AccessTokenSecret != "" {
		c.signer = newOAuth1Signer(cfg.APIKey, cfg.APISecret, cfg.AccessToken, cfg.AccessTokenSecret)
	} else if cfg.BearerToken == "" {
		return nil, errors.New("twitter credentials missing: need api key/secret + access token/secret, or a bearer token")
	}
	return c, nil
}

type tweet struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
	CreatedAt      string `json:"created_at"`
}

type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// SelfID returns the id of the authenticated account
func (c *TwitterClient) SelfID(ctx context.Context) (string, error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.call(ctx, "get_me", http.MethodGet, "/2/users/me", nil, nil, true, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &APIError{Op: "get_me", Kind: errors.New("empty user id in response")}
	}
	return resp.Data.ID, nil
}

// Mentions returns mentions of userID created at or after since
func (c *TwitterClient) Mentions(ctx context.Context, userID string, since time.Time) ([]models.Mention, error) {
	params := url.Values{}
	params.Set("start_time", since.UTC().Format(startTimeLayout))
	params.Set("expansions", "referenced_tweets.id")
	params.Set("tweet.fields", "created_at,conversation_id")
	params.Set("max_results", strconv.Itoa(c.cfg.MaxResults))

	var resp struct {
		Data   []tweet         `json:"data"`
		Meta   json.RawMessage `json:"meta"`
		Errors []apiProblem    `json:"errors"`
	}
	path := "/2/users/" + url.PathEscape(userID) + "/mentions"
	if err := c.call(ctx, "get_mentions", http.MethodGet, path, params, nil, false, &resp); err != nil {
		return nil, err
	}

	mentions := make([]models.Mention, 0, len(resp.Data))
	for _, t := range resp.Data {
		m := models.Mention{
			ID:             t.ID,
			ConversationID: t.ConversationID,
			Text:           t.Text,
			CreatedAtRaw:   t.CreatedAt,
		}
		if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			m.CreatedAt = ts
		}
		mentions = append(mentions, m)
	}
	return mentions, nil
}

// Post fetches a single post
func (c *TwitterClient) Post(ctx context.Context, id string) (*models.Post, error) {
	var resp struct {
		Data   *tweet       `json:"data"`
		Errors []apiProblem `json:"errors"`
	}
	if err := c.call(ctx, "get_tweet", http.MethodGet, "/2/tweets/"+url.PathEscape(id), nil, nil, false, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		detail := "no data in response"
		if len(resp.Errors) > 0 {
			detail = resp.Errors[0].Detail
		}
		return nil, &APIError{Op: "get_tweet", Kind: fmt.Errorf("%w: %s", ErrNotFound, detail)}
	}
	return &models.Post{ID: resp.Data.ID, Text: resp.Data.Text}, nil
}

// CreateReply posts text as a reply to inReplyToID and returns the new post id
func (c *TwitterClient) CreateReply(ctx context.Context, text, inReplyToID string) (string, error) {
	payload := map[string]any{
		"text": text,
		"reply": map[string]string{
			"in_reply_to_tweet_id": inReplyToID,
		},
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.call(ctx, "create_tweet", http.MethodPost, "/2/tweets", nil, payload, true, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &APIError{Op: "create_tweet", Kind: errors.New("empty post id in response")}
	}
	return resp.Data.ID, nil
}

// call performs one API operation with rate limiting and retries on
// transient and rate-limit failures. Writes are retried only on 429, since
// a 5xx or dropped connection may follow an accepted post.
func (c *TwitterClient) call(ctx context.Context, op, method, path string, params url.Values, payload any, userContext bool, target any) error {
	if userContext && c.signer == nil {
		return &APIError{Op: op, Kind: fmt.Errorf("%w: user-context credentials required", ErrUnauthorized)}
	}

	result := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) error {
		err := c.do(ctx, op, method, path, params, payload, target)
		if err == nil || errors.Is(err, ErrRateLimited) {
			return err
		}
		if errors.Is(err, ErrTransient) && method == http.MethodGet {
			return err
		}
		return retry.Permanent(err)
	})
	if !result.Success {
		return result.LastError
	}
	return nil
}

func (c *TwitterClient) do(ctx context.Context, op, method, path string, params url.Values, payload, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &APIError{Op: op, Kind: err}
	}

	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.signer != nil {
		c.signer.authorize(req)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &APIError{Op: op, Kind: ctx.Err()}
		}
		return &APIError{Op: op, Kind: fmt.Errorf("%w: %v", ErrTransient, err)}
	}
	defer resp.Body.Close()

	logRateLimit(ctx, op, resp.Header)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, Kind: fmt.Errorf("%w: read body: %v", ErrTransient, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody), Kind: classifyStatus(resp.StatusCode)}
	}
	if capture.Enabled() {
		capture.WriteBlob("twitter", op, "json", respBody)
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func logRateLimit(ctx context.Context, op string, h http.Header) {
	remaining := h.Get("x-rate-limit-remaining")
	if remaining == "" {
		return
	}
	zerolog.Ctx(ctx).Debug().
		Str("op", op).
		Str("rate_limit_remaining", remaining).
		Str("rate_limit_reset", h.Get("x-rate-limit-reset")).
		Msg("Rate limit status")
}
