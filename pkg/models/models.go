package models

import (
	"time"
)

// Mention is a post directed at the bot's account, discovered by polling.
type Mention struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"-"`
	// CreatedAtRaw is the timestamp exactly as the platform returned it.
	CreatedAtRaw string `json:"created_at"`
}

// Post is a single post fetched by id, typically a conversation root.
type Post struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ReplyRecord is the log entry written once per successful reply. It doubles
// as the dedup index: a root post with a record is never answered again.
type ReplyRecord struct {
	SourcePostID    string `json:"mentioned_conversation_tweet_id"`
	SourcePostText  string `json:"mentioned_conversation_tweet_text"`
	ReplyPostID     string `json:"tweet_response_id"`
	ReplyText       string `json:"tweet_response_text"`
	ReplyCreatedAt  string `json:"tweet_response_created_at"`
	SourceCreatedAt string `json:"mentioned_at"`
}

// RunTally summarizes one orchestration cycle. It is returned by value and
// never shared between cycles.
type RunTally struct {
	Found      int `json:"found"`
	RepliedOK  int `json:"replied_ok"`
	RepliedErr int `json:"replied_err"`
}

// CycleReport describes a finished (or aborted) cycle for status reporting
type CycleReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Tally      RunTally  `json:"tally"`
	Error      string    `json:"error,omitempty"`
}
