// Package search runs the web searches used to ground low-confidence replies.
package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const defaultUserAgent = "factreply/1.0 (+https://github.com/factreply)"

// Searcher is a web search backed by a langchaingo tool
type Searcher struct {
	tool tools.Tool
}

// NewDuckDuckGo creates a DuckDuckGo searcher returning at most maxResults entries
func NewDuckDuckGo(maxResults int, userAgent string) (*Searcher, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	tool, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create duckduckgo tool: %w", err)
	}
	return NewWithTool(tool), nil
}

// NewWithTool wraps any langchaingo tool that takes a query as input
func NewWithTool(tool tools.Tool) *Searcher {
	return &Searcher{tool: tool}
}

// Search returns the tool's result blob for query
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	zerolog.Ctx(ctx).Debug().Str("tool", s.tool.Name()).Str("query", query).Msg("Performing web search")
	out, err := s.tool.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%s search failed: %w", s.tool.Name(), err)
	}
	return out, nil
}
