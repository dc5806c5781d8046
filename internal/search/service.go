package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/book"
)

// explanationWordLimit caps the natural-language match explanation length.
const explanationWordLimit = 15

// Service orchestrates the search pipeline: tag enrichment, keyword
// scoring, conditional AI re-ranking, and per-result match explanations.
type Service struct {
	books     book.Repository
	enricher  *Enricher
	generator ai.Generator
}

// NewService creates the search orchestrator. generator may be nil, in
// which case every AI stage degrades to its heuristic.
func NewService(books book.Repository, generator ai.Generator) *Service {
	return &Service{
		books:     books,
		enricher:  NewEnricher(generator),
		generator: generator,
	}
}

// Search runs the full pipeline for a free-text query and returns ordered
// matches, best first. It fails only when the catalog fetch itself fails;
// any AI failure degrades to the keyword path. A query matching nothing
// returns an empty slice and a nil error, which callers render as a
// distinct "no books matched" state rather than a transport error.
func (s *Service) Search(ctx context.Context, query string) ([]book.WithMatch, error) {
	catalog, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: fetch catalog: %w", err)
	}

	enriched := s.enricher.Enrich(ctx, catalog)
	results := ScoreKeywords(query, enriched)

	if len(results) < MinKeywordMatches && s.generator != nil {
		reranked, err := Rerank(ctx, s.generator, query, enriched)
		if err != nil {
			slog.DebugContext(ctx, "rerank unavailable, keeping keyword results",
				"query", query, "error", err)
		} else if len(reranked) > 0 {
			// The re-ranker supplies its own reasons; no explanation pass.
			return reranked, nil
		}
		return results, nil
	}

	// Keyword path won with enough confidence; decorate each result with a
	// short explanation. A per-item failure degrades to a generic template
	// instead of discarding the result.
	for i := range results {
		results[i].MatchReason = s.explain(ctx, query, results[i].Book)
	}
	return results, nil
}

// explain produces a short natural-language reason a book matched.
func (s *Service) explain(ctx context.Context, query string, b book.Book) string {
	generic := fmt.Sprintf("This book matches your search for '%s'.", query)
	if s.generator == nil {
		return generic
	}

	prompt := fmt.Sprintf(
		"In at most %d words, say why the book %q by %s matches the search %q. Plain text only.",
		explanationWordLimit, b.Title, b.Author, query)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		slog.DebugContext(ctx, "match explanation fell back to template",
			"book_id", b.ID, "error", err)
		return generic
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return generic
	}
	return truncateWords(text, explanationWordLimit)
}

// truncateWords limits s to at most n words.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
