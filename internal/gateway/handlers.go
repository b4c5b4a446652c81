package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"mnemo/internal/history"
)

const cookieMaxAge = 60 * 60 * 24 * 365 * 2

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type historyItem struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	TS      string `json:"ts"`
}

type historyResponse struct {
	Items []historyItem `json:"items"`
}

type exportResponse struct {
	UserID string        `json:"user_id"`
	Items  []historyItem `json:"items"`
}

// userID returns the caller's id from the cookie, issuing a new one if absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(w, r)

	// A missing or malformed body is treated as an empty message.
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("gateway: unreadable chat body", "error", err)
	}

	reply, err := s.runner.Run(r.Context(), userID, req.Message)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply.Text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(w, r)

	limit := s.window
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	events, err := s.history.Window(r.Context(), userID, limit)
	if err != nil {
		slog.Error("gateway: reading history", "user_id", userID, "error", err)
		events = nil
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: toItems(events)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(w, r)

	events, err := s.history.Export(r.Context(), userID)
	if err != nil {
		slog.Error("gateway: exporting history", "user_id", userID, "error", err)
		events = nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=history.json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportResponse{UserID: userID, Items: toItems(events)}); err != nil {
		slog.Error("gateway: writing export", "user_id", userID, "error", err)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(w, r)

	removed, err := s.history.Compact(r.Context(), userID)
	if err != nil {
		slog.Error("gateway: clearing history", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}
	slog.Info("history cleared", "user_id", userID, "removed", removed)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func toItems(events []history.Event) []historyItem {
	items := make([]historyItem, 0, len(events))
	for _, ev := range events {
		items = append(items, historyItem{Role: ev.Role, Message: ev.Message, TS: ev.TS})
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("gateway: writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
