package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/book"
)

// Tag defaults guarantee at least one tag per category so downstream
// consumers never branch on absent tags.
const (
	defaultMood  = "unknown"
	defaultTheme = "literature"
	defaultTopic = "book club"
)

// genreTags maps genre substrings to heuristic tags.
var genreTags = map[string]book.Tags{
	"fantasy": {
		Mood:             []string{"magical", "adventurous"},
		Themes:           []string{"magic", "heroism", "good vs evil"},
		DiscussionTopics: []string{"world building", "the hero's journey"},
	},
	"sci-fi": {
		Mood:             []string{"futuristic", "thought-provoking"},
		Themes:           []string{"technology", "humanity", "exploration"},
		DiscussionTopics: []string{"ethics of technology", "visions of the future"},
	},
	"mystery": {
		Mood:             []string{"suspenseful", "dark"},
		Themes:           []string{"justice", "deception", "truth"},
		DiscussionTopics: []string{"whodunit theories", "moral ambiguity"},
	},
	"thriller": {
		Mood:             []string{"suspenseful", "tense"},
		Themes:           []string{"danger", "survival"},
		DiscussionTopics: []string{"pacing and tension", "plot twists"},
	},
	"romance": {
		Mood:             []string{"heartwarming", "emotional"},
		Themes:           []string{"love", "relationships", "growth"},
		DiscussionTopics: []string{"relationship dynamics", "character chemistry"},
	},
}

// authorTags maps known authors to heuristic tags.
var authorTags = map[string]book.Tags{
	"brandon sanderson": {
		Mood:   []string{"epic"},
		Themes: []string{"magic systems", "destiny"},
	},
	"agatha christie": {
		Mood:   []string{"classic", "suspenseful"},
		Themes: []string{"justice", "deception"},
	},
	"ursula k. le guin": {
		Mood:   []string{"contemplative"},
		Themes: []string{"society", "identity"},
	},
	"stephen king": {
		Mood:   []string{"dark", "unsettling"},
		Themes: []string{"fear", "small towns"},
	},
}

// titleKeywordTags maps title keywords to heuristic tags.
var titleKeywordTags = map[string]book.Tags{
	"dragon": {Mood: []string{"magical"}, Themes: []string{"magic", "mythical creatures"}},
	"spell":  {Mood: []string{"magical"}, Themes: []string{"magic"}},
	"murder": {Mood: []string{"dark"}, Themes: []string{"justice", "death"}},
	"love":   {Mood: []string{"heartwarming"}, Themes: []string{"love"}},
	"war":    {Mood: []string{"somber"}, Themes: []string{"conflict", "sacrifice"}},
	"night":  {Mood: []string{"mysterious"}, Themes: []string{"secrets"}},
}

// Enricher guarantees a Tags object on every catalog entry, attempting the
// generative service first and falling back to deterministic keyword
// heuristics on any failure. AI assistance degrades gracefully; enrichment
// never returns an error for a book.
type Enricher struct {
	generator ai.Generator
}

// NewEnricher creates an Enricher. A nil generator skips the AI attempt
// entirely and always uses heuristics.
func NewEnricher(generator ai.Generator) *Enricher {
	return &Enricher{generator: generator}
}

// Enrich returns books with every entry carrying tags. Entries already
// tagged pass through untouched. One generation call is issued per untagged
// entry (no batching) — a known latency/cost concern on large catalogs,
// bounded by the AI client's rate limiter.
func (e *Enricher) Enrich(ctx context.Context, books []book.Book) []book.Book {
	out := make([]book.Book, len(books))
	for i, b := range books {
		if b.Tags != nil && !b.Tags.Empty() {
			out[i] = b
			continue
		}
		tags := e.generateTags(ctx, b)
		b.Tags = &tags
		out[i] = b
	}
	return out
}

// generateTags attempts the AI path, then falls back to heuristics.
func (e *Enricher) generateTags(ctx context.Context, b book.Book) book.Tags {
	if e.generator != nil {
		if tags, err := e.aiTags(ctx, b); err == nil {
			return fillDefaults(tags)
		} else {
			slog.DebugContext(ctx, "tag generation fell back to heuristics",
				"book_id", b.ID, "error", err)
		}
	}
	return HeuristicTags(b)
}

// aiTagsResponse is the JSON shape requested from the generation service.
type aiTagsResponse struct {
	Mood             []string `json:"mood"`
	Themes           []string `json:"themes"`
	DiscussionTopics []string `json:"discussion_topics"`
}

func (e *Enricher) aiTags(ctx context.Context, b book.Book) (book.Tags, error) {
	prompt := fmt.Sprintf(`Suggest descriptive tags for a book club catalog entry.
Title: %s
Author: %s
Genre: %s
Summary: %s

Respond with JSON only, shaped as:
{"mood": ["..."], "themes": ["..."], "discussion_topics": ["..."]}`,
		b.Title, b.Author, b.Genre, b.Summary)

	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return book.Tags{}, err
	}

	var parsed aiTagsResponse
	if err := ai.ExtractJSONObject(text, &parsed); err != nil {
		return book.Tags{}, err
	}
	return book.Tags{
		Mood:             parsed.Mood,
		Themes:           parsed.Themes,
		DiscussionTopics: parsed.DiscussionTopics,
	}, nil
}

// HeuristicTags derives tags from fixed genre, author, and title keyword
// tables. The result always has at least one tag per category.
func HeuristicTags(b book.Book) book.Tags {
	var tags book.Tags

	genre := strings.ToLower(b.Genre)
	for key, t := range genreTags {
		if strings.Contains(genre, key) {
			tags = mergeTags(tags, t)
		}
	}

	author := strings.ToLower(b.Author)
	if t, ok := authorTags[author]; ok {
		tags = mergeTags(tags, t)
	}

	title := strings.ToLower(b.Title)
	for key, t := range titleKeywordTags {
		if strings.Contains(title, key) {
			tags = mergeTags(tags, t)
		}
	}

	return fillDefaults(tags)
}

// fillDefaults guarantees every category is non-empty.
func fillDefaults(tags book.Tags) book.Tags {
	if len(tags.Mood) == 0 {
		tags.Mood = []string{defaultMood}
	}
	if len(tags.Themes) == 0 {
		tags.Themes = []string{defaultTheme}
	}
	if len(tags.DiscussionTopics) == 0 {
		tags.DiscussionTopics = []string{defaultTopic}
	}
	return tags
}

// mergeTags unions two tag sets, dropping duplicates.
func mergeTags(a, b book.Tags) book.Tags {
	return book.Tags{
		Mood:             mergeStrings(a.Mood, b.Mood),
		Themes:           mergeStrings(a.Themes, b.Themes),
		DiscussionTopics: mergeStrings(a.DiscussionTopics, b.DiscussionTopics),
	}
}

func mergeStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
