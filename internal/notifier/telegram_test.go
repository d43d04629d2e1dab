package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", nil)
	n.APIBase = srv.URL
	n.RetryInterval = time.Millisecond
	return n
}

func TestSendOnce(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv).SendOnce(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv).Send(context.Background(), "x"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testNotifier(srv).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testNotifier(srv).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStartPollingDispatches(t *testing.T) {
	var polls int32
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&polls, 1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"chat":{"id":42},"text":" /ping "}}]}`))
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case "/botTOKEN/sendMessage":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		testNotifier(srv).StartPolling(ctx, func(_ context.Context, cmd string) string {
			if cmd == "/ping" {
				return "pong"
			}
			return ""
		})
		close(done)
	}()

	select {
	case r := <-replies:
		assert.Equal(t, "pong", r)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestStartPollingIgnoresForeignChats(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			w.Write([]byte(`{"ok":true,"result":[` +
				`{"update_id":1,"message":{"chat":{"id":999},"text":"/buy AAPL 10"}},` +
				`{"update_id":2,"message":{"chat":{"id":42},"text":"/ping"}}]}`))
		default:
			w.Write([]byte(`{"ok":true,"result":[]}`))
		}
	}))
	defer srv.Close()

	handled := make(chan string, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		testNotifier(srv).StartPolling(ctx, func(_ context.Context, cmd string) string {
			handled <- cmd
			return ""
		})
		close(done)
	}()

	select {
	case cmd := <-handled:
		assert.Equal(t, "/ping", cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("own chat command not handled")
	}
	cancel()
	<-done
	assert.Empty(t, handled, "foreign chat command must not be dispatched")
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	r.Handle("signal", "SYMBOL", func(_ context.Context, args []string) string {
		if len(args) == 0 {
			return "usage"
		}
		return "signal " + args[0]
	})
	r.Handle("paper", "", func(context.Context, []string) string { return "paper" })

	tests := []struct {
		in   string
		want string
	}{
		{"/signal AAPL", "signal AAPL"},
		{"/SIGNAL  msft", "signal msft"},
		{"/signal@investaur_bot TSLA", "signal TSLA"},
		{"/signal", "usage"},
		{"/paper", "paper"},
		{"hello", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Dispatch(context.Background(), tt.in), tt.in)
	}

	help := r.Dispatch(context.Background(), "/nope")
	assert.Contains(t, help, "/paper")
	assert.Contains(t, help, "/signal SYMBOL")
}
