package search

import (
	"sort"
	"strings"

	"github.com/turnpage/turnpage/internal/book"
)

// Keyword scoring weights. Title and genre matches outrank generic text
// matches; the exact values are a tie-break policy that must stay stable
// for reproducible ordering.
const (
	exactPhraseBonus    = 100.0
	tokenBaseScore      = 10.0
	tokenTitleBonus     = 20.0
	tokenGenreBonus     = 15.0
	tokenMoodThemeBonus = 15.0
	tokenTopicBonus     = 10.0

	// scoreNormalizer converts raw points to the [0,1] match score.
	scoreNormalizer = 100.0

	// MinKeywordScore filters out weak matches after normalization.
	MinKeywordScore = 0.1

	// MaxResults caps search output.
	MaxResults = 5
)

// ScoreKeywords scores catalog entries against a free-text query using
// substring and term-overlap heuristics. Entries scoring <= MinKeywordScore
// are dropped; survivors are sorted descending by score (ties broken by
// title for determinism) and truncated to MaxResults.
func ScoreKeywords(query string, books []book.Book) []book.WithMatch {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	tokens := Tokenize(query)

	results := make([]book.WithMatch, 0, len(books))
	for _, b := range books {
		score := scoreBook(queryLower, tokens, b)
		score /= scoreNormalizer
		if score > 1.0 {
			score = 1.0
		}
		if score <= MinKeywordScore {
			continue
		}
		results = append(results, book.WithMatch{Book: b, MatchScore: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].Title < results[j].Title
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// scoreBook computes the raw point total for one entry.
func scoreBook(queryLower string, tokens []string, b book.Book) float64 {
	title := strings.ToLower(b.Title)
	genre := strings.ToLower(b.Genre)
	searchable := title + " " + strings.ToLower(b.Author) + " " + genre + " " + strings.ToLower(b.Summary)

	var score float64
	if queryLower != "" && strings.Contains(searchable, queryLower) {
		score += exactPhraseBonus
	}

	for _, token := range distinct(tokens) {
		if !strings.Contains(searchable, token) {
			// Tag-only matches still count below; text miss is not a
			// disqualifier for tagged tokens.
			if !tagMatch(b.Tags, token) {
				continue
			}
		} else {
			score += tokenBaseScore
			if strings.Contains(title, token) {
				score += tokenTitleBonus
			}
			if strings.Contains(genre, token) {
				score += tokenGenreBonus
			}
		}

		if b.Tags != nil {
			if containsToken(b.Tags.Mood, token) || containsToken(b.Tags.Themes, token) {
				score += tokenMoodThemeBonus
			}
			if containsToken(b.Tags.DiscussionTopics, token) {
				score += tokenTopicBonus
			}
		}
	}
	return score
}

// tagMatch reports whether any tag in any category contains token.
func tagMatch(tags *book.Tags, token string) bool {
	if tags == nil {
		return false
	}
	return containsToken(tags.Mood, token) ||
		containsToken(tags.Themes, token) ||
		containsToken(tags.DiscussionTopics, token)
}

// containsToken reports whether any value contains token,
// case-insensitively.
func containsToken(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), token) {
			return true
		}
	}
	return false
}

// distinct returns tokens with duplicates removed, preserving order.
func distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
