package book

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryRepository_ListSorted(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Add(Book{Title: "Zebra Crossing"})
	repo.Add(Book{Title: "Amber Light"})
	repo.Add(Book{Title: "Midway Point"})

	books, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Amber Light", "Midway Point", "Zebra Crossing"}
	if len(books) != len(want) {
		t.Fatalf("len = %d, want %d", len(books), len(want))
	}
	for i, title := range want {
		if books[i].Title != title {
			t.Errorf("books[%d].Title = %q, want %q", i, books[i].Title, title)
		}
	}
}

func TestInMemoryRepository_Get(t *testing.T) {
	repo := NewInMemoryRepository()
	stored := repo.Add(Book{Title: "Found"})
	if stored.ID == "" {
		t.Fatal("Add should assign an ID")
	}

	got, err := repo.Get(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Found" {
		t.Errorf("Title = %q", got.Title)
	}

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryRepository_ListFeatured(t *testing.T) {
	repo := NewInMemoryRepository()
	a := repo.Add(Book{Title: "First Pick"})
	repo.Add(Book{Title: "Not Featured"})
	b := repo.Add(Book{Title: "Second Pick"})

	// Featured order is curation order, not title order.
	repo.Feature(b.ID)
	repo.Feature(a.ID)

	featured, err := repo.ListFeatured(context.Background())
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 2 {
		t.Fatalf("len = %d, want 2", len(featured))
	}
	if featured[0].Title != "Second Pick" || featured[1].Title != "First Pick" {
		t.Errorf("order = %q, %q", featured[0].Title, featured[1].Title)
	}
}

func TestInMemoryRepository_Suggest(t *testing.T) {
	repo := NewInMemoryRepository()
	s := &Suggestion{Title: "Tomorrow, and Tomorrow, and Tomorrow", MemberID: "member-1"}
	if err := repo.Suggest(context.Background(), s); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.ID == "" {
		t.Error("Suggest should assign an ID")
	}

	stored := repo.Suggestions()
	if len(stored) != 1 || stored[0].Title != s.Title || stored[0].MemberID != "member-1" {
		t.Errorf("stored = %+v", stored)
	}
}
