package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/factreply/pkg/models"
)

const defaultAirtableURL = "https://api.airtable.com/v0"

// Column names of the Airtable table, shared with earlier deployments of the bot
const (
	fieldSourcePostID    = "mentioned_conversation_tweet_id"
	fieldSourcePostText  = "mentioned_conversation_tweet_text"
	fieldReplyPostID     = "tweet_response_id"
	fieldReplyText       = "tweet_response_text"
	fieldReplyCreatedAt  = "tweet_response_created_at"
	fieldSourceCreatedAt = "mentioned_at"
)

// AirtableConfig configures the Airtable backend
type AirtableConfig struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Table   string
	View    string
}

// AirtableStore stores records as rows of an Airtable table
type AirtableStore struct {
	cfg        AirtableConfig
	httpClient *http.Client
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type airtableListResponse struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

// NewAirtableStore creates an Airtable-backed store
func NewAirtableStore(cfg AirtableConfig) (*AirtableStore, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" || cfg.Table == "" {
		return nil, fmt.Errorf("airtable api key, base id and table are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAirtableURL
	}
	return &AirtableStore{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *AirtableStore) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.BaseID), url.PathEscape(s.cfg.Table))
}

// GetAllRecords pages through the whole table
func (s *AirtableStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
	var all []models.ReplyRecord
	offset := ""
	for {
		params := url.Values{}
		if s.cfg.View != "" {
			params.Set("view", s.cfg.View)
		}
		if offset != "" {
			params.Set("offset", offset)
		}
		endpoint := s.tableURL()
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}

		var page airtableListResponse
		if err := s.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list airtable records: %w", err)
		}
		for _, rec := range page.Records {
			all = append(all, fromAirtableFields(rec.Fields))
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	log.Debug().Int("count", len(all)).Msg("Loaded reply records from airtable")
	return all, nil
}

// InsertRecord appends one row
func (s *AirtableStore) InsertRecord(ctx context.Context, rec models.ReplyRecord) error {
	body := airtableRecord{Fields: toAirtableFields(rec)}
	var created airtableRecord
	if err := s.do(ctx, http.MethodPost, s.tableURL(), body, &created); err != nil {
		return fmt.Errorf("failed to insert airtable record: %w", err)
	}
	log.Debug().Str("airtable_id", created.ID).Str("source_post_id", rec.SourcePostID).Msg("Logged reply in airtable")
	return nil
}

func (s *AirtableStore) do(ctx context.Context, method, endpoint string, payload, target any) error {
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
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("airtable API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func toAirtableFields(rec models.ReplyRecord) map[string]any {
	return map[string]any{
		fieldSourcePostID:    rec.SourcePostID,
		fieldSourcePostText:  rec.SourcePostText,
		fieldReplyPostID:     rec.ReplyPostID,
		fieldReplyText:       rec.ReplyText,
		fieldReplyCreatedAt:  rec.ReplyCreatedAt,
		fieldSourceCreatedAt: rec.SourceCreatedAt,
	}
}

func fromAirtableFields(fields map[string]any) models.ReplyRecord {
	return models.ReplyRecord{
		SourcePostID:    fieldString(fields, fieldSourcePostID),
		SourcePostText:  fieldString(fields, fieldSourcePostText),
		ReplyPostID:     fieldString(fields, fieldReplyPostID),
		ReplyText:       fieldString(fields, fieldReplyText),
		ReplyCreatedAt:  fieldString(fields, fieldReplyCreatedAt),
		SourceCreatedAt: fieldString(fields, fieldSourceCreatedAt),
	}
}

// fieldString normalizes a cell to a string. Numeric columns come back as
// float64 from encoding/json.
func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
