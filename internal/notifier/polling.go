package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// pollRetry is the pause after a failed poll.
var pollRetry = 5 * time.Second

// StartPolling begins long-polling for Telegram commands. Only messages from
// the configured chat reach handler. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			t.Log.Info("telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			t.Log.Error("create polling request", zap.Error(err))
			sleep(ctx, pollRetry)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.Log.Warn("polling request failed", zap.Error(err))
			sleep(ctx, pollRetry)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Log.Warn("read polling response", zap.Error(err))
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			t.Log.Warn("decode polling response", zap.Error(err))
			sleep(ctx, pollRetry)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if chat := strconv.FormatInt(update.Message.Chat.ID, 10); chat != t.ChatID {
				t.Log.Warn("ignoring command from foreign chat", zap.String("chat_id", chat))
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			t.Log.Info("received command", zap.String("text", text))
			reply := handler(ctx, text)
			if reply != "" {
				if err := t.SendOnce(ctx, reply); err != nil {
					t.Log.Error("send reply", zap.Error(err))
				}
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Command answers a bot command. args are the words after the command.
type Command func(ctx context.Context, args []string) string

// Router dispatches "/name arg..." messages to registered commands.
type Router struct {
	commands map[string]Command
	help     map[string]string
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{commands: map[string]Command{}, help: map[string]string{}}
}

// Handle registers cmd under name (without the leading slash).
func (r *Router) Handle(name, help string, cmd Command) {
	r.commands[name] = cmd
	r.help[name] = help
}

// Dispatch runs the command in text. Unknown commands and /help list the commands.
func (r *Router) Dispatch(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	// Group chats append the bot name: /signal@investaur_bot AAPL.
	name := strings.ToLower(strings.SplitN(strings.TrimPrefix(fields[0], "/"), "@", 2)[0])
	if cmd, ok := r.commands[name]; ok {
		return cmd(ctx, fields[1:])
	}
	return r.usage()
}

func (r *Router) usage() string {
	names := make([]string, 0, len(r.help))
	for n := range r.help {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("<b>Commands</b>\n")
	for _, n := range names {
		b.WriteString(fmt.Sprintf("/%s %s\n", n, r.help[n]))
	}
	return b.String()
}
