package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/book"
)

// MinKeywordMatches is the confidence threshold for the keyword path. The
// AI re-ranker only runs when keyword scoring finds fewer matches than
// this.
const MinKeywordMatches = 3

// rerankEntry is one element of the JSON array requested from the
// generation service. Index is 1-based into the serialized candidate list.
type rerankEntry struct {
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Rerank asks the generation service to pick and score the best-matching
// candidates for query. Indices outside the candidate range and entries
// beyond MaxResults are discarded. Returns an error on any service or
// parse failure; the orchestrator falls back to keyword results, so a
// rerank failure is never user-visible.
func Rerank(ctx context.Context, generator ai.Generator, query string, candidates []book.Book) ([]book.WithMatch, error) {
	if generator == nil {
		return nil, fmt.Errorf("rerank: no generator configured")
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("rerank: no candidates")
	}

	text, err := generator.Generate(ctx, rerankPrompt(query, candidates))
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	var entries []rerankEntry
	if err := ai.ExtractJSONArray(text, &entries); err != nil {
		return nil, fmt.Errorf("rerank: parse response: %w", err)
	}

	results := make([]book.WithMatch, 0, MaxResults)
	for _, e := range entries {
		if e.Index < 1 || e.Index > len(candidates) {
			continue
		}
		score := e.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		results = append(results, book.WithMatch{
			Book:        candidates[e.Index-1],
			MatchScore:  score,
			MatchReason: e.Reason,
		})
		if len(results) == MaxResults {
			break
		}
	}
	return results, nil
}

// rerankPrompt serializes the candidate list (title, author, genre,
// summary, tags) alongside the query.
func rerankPrompt(query string, candidates []book.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A book club member searched for: %q\n\n", query)
	sb.WriteString("Candidate books:\n")
	for i, b := range candidates {
		fmt.Fprintf(&sb, "%d. %s by %s", i+1, b.Title, b.Author)
		if b.Genre != "" {
			fmt.Fprintf(&sb, " (%s)", b.Genre)
		}
		sb.WriteString("\n")
		if b.Summary != "" {
			fmt.Fprintf(&sb, "   Summary: %s\n", b.Summary)
		}
		if b.Tags != nil {
			fmt.Fprintf(&sb, "   Tags: mood %s; themes %s; topics %s\n",
				strings.Join(b.Tags.Mood, ", "),
				strings.Join(b.Tags.Themes, ", "),
				strings.Join(b.Tags.DiscussionTopics, ", "))
		}
	}
	fmt.Fprintf(&sb, `
Pick up to %d books that best match the search. Respond with a JSON array
only, using 1-based indices into the list above, shaped as:
[{"index": 1, "score": 0.9, "reason": "short explanation"}]
Scores are between 0 and 1.`, MaxResults)
	return sb.String()
}
