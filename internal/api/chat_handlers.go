package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/turnpage/turnpage/internal/ai"
	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/covers"
	"github.com/turnpage/turnpage/internal/validate"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// chatFallback is returned when the generative service cannot answer.
const chatFallback = "I'm having trouble answering right now. Try browsing the catalog or asking again in a bit."

// chatReadTimeout closes idle chat connections.
const chatReadTimeout = 5 * time.Minute

// maxChatRecommendations bounds the cover lookups per reply.
const maxChatRecommendations = 3

// ChatHandlers holds dependencies for the club assistant WebSocket.
type ChatHandlers struct {
	generator ai.Generator
	books     book.Repository
	covers    *covers.Resolver // Optional, can be nil
	origins   []string
}

// NewChatHandlers creates a new ChatHandlers instance. coverResolver is
// optional; origins is the allowed WebSocket origin list, matching the
// CORS allowlist.
func NewChatHandlers(generator ai.Generator, books book.Repository, coverResolver *covers.Resolver, origins []string) *ChatHandlers {
	h := &ChatHandlers{
		generator: generator,
		books:     books,
		covers:    coverResolver,
		origins:   origins,
	}
	return h
}

// ChatMessage is one inbound message from the member.
type ChatMessage struct {
	Message string `json:"message"`
}

// ChatRecommendation is a catalog book the assistant mentioned, with a
// cover for the client to render as a card.
type ChatRecommendation struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	CoverImage string `json:"cover_image,omitempty"`
}

// ChatReply is one outbound assistant reply.
type ChatReply struct {
	Reply           string               `json:"reply"`
	Recommendations []ChatRecommendation `json:"recommendations,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// checkOrigin enforces the configured origin allowlist on the upgrade.
func (h *ChatHandlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.origins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// catalogContext summarizes the catalog for the assistant prompt. Kept
// to titles and authors so the prompt stays small.
func catalogContext(books []book.Book) string {
	if len(books) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("The club's catalog:\n")
	for _, b := range books {
		sb.WriteString("- ")
		sb.WriteString(b.Title)
		if b.Author != "" {
			sb.WriteString(" by ")
			sb.WriteString(b.Author)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// recommendations collects catalog books the reply mentions by title,
// backfilling missing covers. Lookups are best-effort decoration.
func (h *ChatHandlers) recommendations(r *http.Request, books []book.Book, reply string) []ChatRecommendation {
	lower := strings.ToLower(reply)

	var out []ChatRecommendation
	for _, b := range books {
		if len(out) == maxChatRecommendations {
			break
		}
		if b.Title == "" || !strings.Contains(lower, strings.ToLower(b.Title)) {
			continue
		}

		rec := ChatRecommendation{
			BookID:     b.ID,
			Title:      b.Title,
			Author:     b.Author,
			CoverImage: b.CoverImage,
		}
		if rec.CoverImage == "" && h.covers != nil {
			if url, ok := h.covers.Cover(r.Context(), b.Title, b.Author); ok {
				rec.CoverImage = url
			}
		}
		out = append(out, rec)
	}
	return out
}

// Chat handles GET /chat/ws - a WebSocket conversation with the club
// assistant. Each inbound message gets one reply; generation failures
// degrade to a fixed fallback instead of closing the connection.
func (h *ChatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	upgrader := chatUpgrader
	upgrader.CheckOrigin = h.checkOrigin

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to upgrade chat connection", "error", err)
		return
	}
	defer conn.Close()

	books, err := h.books.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load catalog for chat", "error", err)
		books = nil
	}
	catalog := catalogContext(books)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(chatReadTimeout))

		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.DebugContext(r.Context(), "chat connection closed", "error", err)
			}
			return
		}

		message, err := validate.ChatMessage(msg.Message)
		if err != nil {
			if werr := conn.WriteJSON(ChatReply{Error: "message is required and must be at most 1000 characters"}); werr != nil {
				return
			}
			continue
		}

		reply := chatFallback
		if h.generator != nil {
			prompt := "You are a friendly book club assistant. Answer briefly and only about books, reading, and club activities.\n\n" +
				catalog + "\nMember: " + message
			if text, err := h.generator.Generate(r.Context(), prompt); err == nil && strings.TrimSpace(text) != "" {
				reply = strings.TrimSpace(text)
			} else if err != nil {
				slog.DebugContext(r.Context(), "chat generation unavailable", "error", err)
			}
		}

		out := ChatReply{Reply: reply}
		if reply != chatFallback {
			out.Recommendations = h.recommendations(r, books, reply)
		}
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}
