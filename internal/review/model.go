// Package review provides review and reply models, repositories, and
// rating statistics.
package review

import (
	"time"

	"github.com/turnpage/turnpage/internal/cms"
)

// Review is a member-authored book review projected from the Reviews
// collection. Rating supports fractional values for display; statistics
// only count integer ratings 1..5 as valid.
type Review struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	Reviewer  string     `json:"reviewer"`
	Rating    float64    `json:"rating"`
	Body      string     `json:"body"`
	OwnerID   string     `json:"owner_id,omitempty"`
	Likes     int        `json:"likes"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Reply is a threaded reply to a review. Deletable only by its author.
type Reply struct {
	ID         string     `json:"id"`
	ReviewID   string     `json:"review_id"`
	Content    string     `json:"content"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// FromRecord decodes a CMS record into a Review with defensive defaulting.
func FromRecord(rec cms.Record) Review {
	r := Review{
		ID:       rec.ID(),
		BookID:   rec.Str("bookId"),
		Reviewer: rec.StrOr("reviewer", "Anonymous"),
		Rating:   rec.Float("rating"),
		Body:     rec.Str("body"),
		OwnerID:  rec.Str("ownerId"),
		Likes:    rec.Int("likes"),
	}
	if t, ok := rec.Time("_createdDate"); ok {
		r.CreatedAt = &t
	}
	return r
}

// ToItem encodes a Review for the data-items API.
func (r Review) ToItem() map[string]any {
	return map[string]any{
		"bookId":   r.BookID,
		"reviewer": r.Reviewer,
		"rating":   r.Rating,
		"body":     r.Body,
		"ownerId":  r.OwnerID,
		"likes":    r.Likes,
	}
}

// ReplyFromRecord decodes a CMS record into a Reply.
func ReplyFromRecord(rec cms.Record) Reply {
	rp := Reply{
		ID:         rec.ID(),
		ReviewID:   rec.Str("reviewId"),
		Content:    rec.Str("content"),
		AuthorID:   rec.Str("authorId"),
		AuthorName: rec.StrOr("authorName", "Member"),
	}
	if t, ok := rec.Time("_createdDate"); ok {
		rp.CreatedAt = &t
	}
	return rp
}

// ToItem encodes a Reply for the data-items API.
func (rp Reply) ToItem() map[string]any {
	return map[string]any{
		"reviewId":   rp.ReviewID,
		"content":    rp.Content,
		"authorId":   rp.AuthorID,
		"authorName": rp.AuthorName,
	}
}
