// Package responder turns the text of a post into a fact-checking reply.
package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/factreply/internal/confidence"
)

// DefaultSearchResults is how many search entries are fed back on escalation
const DefaultSearchResults = 3

// TextCompletion is a stateless single-turn completion backend
type TextCompletion interface {
	Complete(ctx context.Context, systemInstruction, userText string) (string, error)
}

// WebSearch returns a free-form blob of results for a query
type WebSearch interface {
	Search(ctx context.Context, query string) (string, error)
}

// Generator builds replies, escalating to a web search when the model
// reports Low confidence.
type Generator struct {
	completion    TextCompletion
	search        WebSearch
	searchResults int
}

// Option configures a Generator
type Option func(*Generator)

// WithSearchResults overrides how many search entries are used on escalation
func WithSearchResults(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.searchResults = n
		}
	}
}

// NewGenerator creates a Generator
func NewGenerator(completion TextCompletion, search WebSearch, opts ...Option) *Generator {
	g := &Generator{
		completion:    completion,
		search:        search,
		searchResults: DefaultSearchResults,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the reply for input with the confidence marker removed.
// Backend errors are returned to the caller, nothing is retried here.
func (g *Generator) Generate(ctx context.Context, input string) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("input", input).Msg("Generating response")

	response, err := g.completion.Complete(ctx, SystemInstruction, input)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	level, _ := confidence.Extract(response)
	logger.Info().Str("confidence", string(level)).Msg("Confidence level of response")

	switch {
	case level == confidence.Unknown:
		logger.Warn().Msg("No confidence level detected in the response")
	case level.IsLow():
		response, err = g.escalate(ctx, input)
		if err != nil {
			return "", err
		}
	}

	reply := confidence.Strip(response)
	logger.Info().Str("reply", reply).Msg("Response generated")
	return reply, nil
}

// escalate searches the web for input and asks for a new completion with the
// top results prepended.
func (g *Generator) escalate(ctx context.Context, input string) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("Low confidence detected, performing web search")

	blob, err := g.search.Search(ctx, input)
	if err != nil {
		return "", fmt.Errorf("web search failed: %w", err)
	}

	results := TopResults(blob, g.searchResults)
	logger.Debug().Str("results", results).Msg("Web search results")

	response, err := g.completion.Complete(ctx, SystemInstruction, augmentPrompt(results, input))
	if err != nil {
		return "", fmt.Errorf("completion with search context failed: %w", err)
	}
	return response, nil
}

// TopResults keeps the first n entries of a search result blob. Entries are
// blocks separated by blank lines; a blob without blank lines is one entry.
func TopResults(blob string, n int) string {
	var entries []string
	for _, block := range strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		entries = append(entries, block)
		if len(entries) == n {
			break
		}
	}
	return strings.Join(entries, "\n\n")
}
