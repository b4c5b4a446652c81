package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mnemo/internal/agent"
)

const (
	telegramAPIBase      = "https://api.telegram.org/bot%s"
	telegramSendMsg      = "/sendMessage"
	telegramChatAction   = "/sendChatAction"
	telegramActionTyping = "typing"
)

type TelegramOption func(*Telegram)

// WithAPIURL overrides the bot API base URL (bot token included).
func WithAPIURL(url string) TelegramOption {
	return func(t *Telegram) { t.apiURL = strings.TrimSuffix(url, "/") }
}

func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) { t.client = c }
}

// WithAllowedUsers restricts the bot to the given chat ids. Empty allows everyone.
func WithAllowedUsers(ids ...int64) TelegramOption {
	return func(t *Telegram) { t.allowedUsers = append(t.allowedUsers, ids...) }
}

type Telegram struct {
	runner       agent.Runner
	apiURL       string
	client       *http.Client
	allowedUsers []int64
}

func NewTelegram(botToken string, runner agent.Runner, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		runner: runner,
		apiURL: fmt.Sprintf(telegramAPIBase, botToken),
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ParseAllowedUsers reads a comma-separated list of chat ids, skipping bad entries.
func ParseAllowedUsers(v string) []int64 {
	var ids []int64
	for _, s := range strings.Split(v, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// UserID is the conversation owner id used for a Telegram chat.
func UserID(chatID int64) string {
	return "telegram:" + strconv.FormatInt(chatID, 10)
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook/telegram", t.handleWebhook)
}

type telegramUpdate struct {
	Message *telegramMessage `json:"message"`
}

type telegramMessage struct {
	Chat telegramChat `json:"chat"`
	Text string       `json:"text"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

type telegramSendRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *Telegram) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Error("telegram: failed to decode update", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Telegram retries non-2xx deliveries, so ignored updates still get 200.
	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.Message.Chat.ID
	if len(t.allowedUsers) > 0 && !slices.Contains(t.allowedUsers, chatID) {
		slog.Warn("telegram: message from unlisted chat", "chat_id", chatID)
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	slog.Debug("telegram: received message", "chat_id", chatID)
	t.sendTyping(ctx, chatID)

	reply, err := t.runner.Run(ctx, UserID(chatID), update.Message.Text)
	if err != nil {
		slog.Error("telegram: run failed", "chat_id", chatID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := t.sendMessage(ctx, chatID, reply.Text); err != nil {
		slog.Error("telegram: failed to send message", "chat_id", chatID, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

func (t *Telegram) sendTyping(ctx context.Context, chatID int64) {
	body, _ := json.Marshal(map[string]any{
		"chat_id": chatID,
		"action":  telegramActionTyping,
	})
	resp, err := t.post(ctx, telegramChatAction, body)
	if err != nil {
		slog.Warn("telegram: failed to send typing action", "chat_id", chatID, "error", err)
		return
	}
	resp.Body.Close()
}

func (t *Telegram) sendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(telegramSendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	resp, err := t.post(ctx, telegramSendMsg, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}

func (t *Telegram) post(ctx context.Context, method string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+method, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.client.Do(req)
}
