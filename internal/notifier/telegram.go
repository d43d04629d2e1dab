package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultAPIBase is the Telegram Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Notifier pushes a formatted message somewhere.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop discards messages. Used when Telegram is not configured.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken      string
	ChatID        string
	APIBase       string
	MaxRetries    uint64
	RetryInterval time.Duration
	Client        *http.Client
	Log           *zap.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log *zap.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramNotifier{
		BotToken:      botToken,
		ChatID:        chatID,
		APIBase:       DefaultAPIBase,
		MaxRetries:    3,
		RetryInterval: time.Second,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Log: log,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// SendOnce sends a message to the configured chat without retrying.
func (t *TelegramNotifier) SendOnce(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
		// Bad token or malformed HTML will not get better on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	return nil
}

// Send sends a message with exponential backoff retry.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, t.MaxRetries)
}

// SendWithRetry sends a message, retrying up to maxRetries times with exponential backoff.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries uint64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.RetryInterval
	b.MaxElapsedTime = 0
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return t.SendOnce(ctx, text)
	}, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx), func(err error, wait time.Duration) {
		t.Log.Warn("telegram send failed, retrying",
			zap.Int("attempt", attempt), zap.Uint64("max_retries", maxRetries),
			zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("telegram send after %d attempts: %w", attempt, err)
	}
	return nil
}
