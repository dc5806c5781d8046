package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/covers"
)

// fixedCover always resolves to one URL.
type fixedCover struct{ url string }

func (p fixedCover) Cover(ctx context.Context, title, author string) (string, bool) {
	return p.url, true
}

func dialChat(t *testing.T, h *ChatHandlers) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.Chat))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChat_ReplyWithRecommendations(t *testing.T) {
	books := book.NewInMemoryRepository()
	stored := books.Add(book.Book{Title: "The Night Library", Author: "J. Moran"})

	gen := ai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "The Night Library") {
			t.Error("prompt should carry the catalog")
		}
		return "You might enjoy The Night Library for your next meeting.", nil
	})

	h := NewChatHandlers(gen, books, covers.NewResolverWith(fixedCover{url: "https://img.example/cover.jpg"}), nil)
	conn := dialChat(t, h)

	if err := conn.WriteJSON(ChatMessage{Message: "What should we read next?"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply ChatReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(reply.Reply, "The Night Library") {
		t.Errorf("Reply = %q", reply.Reply)
	}
	if len(reply.Recommendations) != 1 {
		t.Fatalf("Recommendations = %+v", reply.Recommendations)
	}
	rec := reply.Recommendations[0]
	if rec.BookID != stored.ID || rec.CoverImage != "https://img.example/cover.jpg" {
		t.Errorf("recommendation = %+v", rec)
	}
}

func TestChat_GeneratorFailureFallsBack(t *testing.T) {
	books := book.NewInMemoryRepository()
	gen := ai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("unavailable")
	})

	conn := dialChat(t, NewChatHandlers(gen, books, nil, nil))

	if err := conn.WriteJSON(ChatMessage{Message: "Hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply ChatReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Reply != chatFallback {
		t.Errorf("Reply = %q, want the fallback", reply.Reply)
	}
	if len(reply.Recommendations) != 0 {
		t.Errorf("fallback reply should carry no recommendations")
	}
}

func TestChat_RejectsInvalidMessage(t *testing.T) {
	conn := dialChat(t, NewChatHandlers(nil, book.NewInMemoryRepository(), nil, nil))

	if err := conn.WriteJSON(ChatMessage{Message: "   "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply ChatReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Error == "" {
		t.Error("expected a validation error in the reply")
	}

	// The connection survives the bad message.
	if err := conn.WriteJSON(ChatMessage{Message: "still here"}); err != nil {
		t.Fatalf("write after error: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read after error: %v", err)
	}
	if reply.Reply != chatFallback {
		t.Errorf("Reply = %q", reply.Reply)
	}
}
