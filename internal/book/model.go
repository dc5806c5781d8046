// Package book provides the catalog models and repository for book records.
package book

import (
	"time"

	"github.com/turnpage/turnpage/internal/cms"
)

// Tags holds the derived descriptive labels for a book. Every category is
// guaranteed non-empty once a book has passed through tag enrichment, so
// downstream consumers never branch on absent tags.
type Tags struct {
	Mood             []string `json:"mood"`
	Themes           []string `json:"themes"`
	DiscussionTopics []string `json:"discussion_topics"`
}

// Empty reports whether no category carries a tag.
func (t Tags) Empty() bool {
	return len(t.Mood) == 0 && len(t.Themes) == 0 && len(t.DiscussionTopics) == 0
}

// Book is a single catalog entry projected from the Books collection.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	PublishDate string     `json:"publish_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`

	// Tags are computed on demand and not guaranteed persisted back.
	Tags *Tags `json:"tags,omitempty"`
}

// WithMatch is a Book augmented with query-time relevance. Created only as
// a search result and discarded after the response.
type WithMatch struct {
	Book
	MatchScore  float64 `json:"match_score"`
	MatchReason string  `json:"match_reason,omitempty"`
}

// Suggestion is a member-submitted book suggestion.
type Suggestion struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	Note      string `json:"note,omitempty"`
	MemberID  string `json:"member_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FromRecord decodes a CMS record into a Book, defaulting every optional
// field. This is the single boundary where loosely-typed remote data
// becomes a typed model.
func FromRecord(rec cms.Record) Book {
	b := Book{
		ID:          rec.ID(),
		Title:       rec.Str("title"),
		Author:      rec.Str("author"),
		Genre:       rec.Str("genre"),
		Summary:     rec.Str("summary"),
		Description: rec.Str("description"),
		CoverImage:  rec.Str("coverImage"),
		PublishDate: rec.Str("publishDate"),
	}
	if t, ok := rec.Time("_createdDate"); ok {
		b.CreatedAt = &t
	}
	if tags := rec.Map("tags"); tags != nil {
		decoded := Tags{
			Mood:             tags.Strings("mood"),
			Themes:           tags.Strings("themes"),
			DiscussionTopics: tags.Strings("discussionTopics"),
		}
		if !decoded.Empty() {
			b.Tags = &decoded
		}
	}
	return b
}

// ToItem encodes a Book for the data-items API.
func (b Book) ToItem() map[string]any {
	item := map[string]any{
		"title":       b.Title,
		"author":      b.Author,
		"genre":       b.Genre,
		"summary":     b.Summary,
		"description": b.Description,
		"coverImage":  b.CoverImage,
		"publishDate": b.PublishDate,
	}
	if b.Tags != nil {
		item["tags"] = map[string]any{
			"mood":             b.Tags.Mood,
			"themes":           b.Tags.Themes,
			"discussionTopics": b.Tags.DiscussionTopics,
		}
	}
	return item
}
