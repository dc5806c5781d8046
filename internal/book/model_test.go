package book

import (
	"testing"
	"time"

	"github.com/turnpage/turnpage/internal/cms"
)

func TestFromRecord(t *testing.T) {
	rec := cms.Record{
		"_id":          "b1",
		"title":        "The Night Library",
		"author":       "J. Moran",
		"genre":        "Fantasy",
		"summary":      "A library that only opens after dark.",
		"coverImage":   "https://img.example/night-library.jpg",
		"publishDate":  "2024-10-01",
		"_createdDate": "2026-01-05T09:00:00Z",
		"tags": map[string]any{
			"mood":             []any{"atmospheric", "cozy"},
			"themes":           []any{"belonging"},
			"discussionTopics": []any{"what would you borrow"},
		},
	}

	b := FromRecord(rec)

	if b.ID != "b1" || b.Title != "The Night Library" || b.Author != "J. Moran" {
		t.Errorf("core fields = %+v", b)
	}
	if b.CreatedAt == nil || !b.CreatedAt.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", b.CreatedAt)
	}
	if b.Tags == nil {
		t.Fatal("Tags should be decoded")
	}
	if len(b.Tags.Mood) != 2 || b.Tags.Mood[0] != "atmospheric" {
		t.Errorf("Mood = %v", b.Tags.Mood)
	}
	if len(b.Tags.DiscussionTopics) != 1 {
		t.Errorf("DiscussionTopics = %v", b.Tags.DiscussionTopics)
	}
}

func TestFromRecord_Minimal(t *testing.T) {
	b := FromRecord(cms.Record{"id": "b2", "title": "Untagged"})

	if b.ID != "b2" {
		t.Errorf("ID = %q, legacy id field should be honored", b.ID)
	}
	if b.CreatedAt != nil {
		t.Errorf("CreatedAt = %v, want nil", b.CreatedAt)
	}
	if b.Tags != nil {
		t.Errorf("Tags = %v, want nil", b.Tags)
	}
}

func TestFromRecord_EmptyTagsDropped(t *testing.T) {
	rec := cms.Record{
		"_id":   "b3",
		"title": "Blank Tags",
		"tags":  map[string]any{"mood": []any{}, "themes": []any{}},
	}
	if b := FromRecord(rec); b.Tags != nil {
		t.Errorf("Tags = %v, empty tag object should decode to nil", b.Tags)
	}
}

func TestTags_Empty(t *testing.T) {
	if !(Tags{}).Empty() {
		t.Error("zero Tags should be empty")
	}
	if (Tags{Mood: []string{"tense"}}).Empty() {
		t.Error("Tags with a mood should not be empty")
	}
}

func TestToItem_RoundTrip(t *testing.T) {
	b := Book{
		Title:  "Signal Fires",
		Author: "D. Shapiro",
		Tags:   &Tags{Themes: []string{"family"}},
	}
	item := b.ToItem()
	if item["title"] != "Signal Fires" {
		t.Errorf("title = %v", item["title"])
	}
	tags, ok := item["tags"].(map[string]any)
	if !ok {
		t.Fatal("tags missing from item")
	}
	themes, _ := tags["themes"].([]string)
	if len(themes) != 1 || themes[0] != "family" {
		t.Errorf("themes = %v", tags["themes"])
	}
}
