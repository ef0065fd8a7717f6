package lineapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Config{
		BaseURL:            server.URL,
		DataBaseURL:        server.URL,
		ChannelAccessToken: "test-token",
		HTTPClient:         server.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientDefaultsAndValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected access token validation error")
	}
	client, err := New(Config{ChannelAccessToken: "token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", client.baseURL)
	}
	if client.dataBaseURL != defaultDataBaseURL {
		t.Fatalf("expected default data base url, got %s", client.dataBaseURL)
	}
	if client.httpClient == nil || client.httpClient.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout")
	}
	if client.logger == nil {
		t.Fatalf("expected default logger")
	}
}

func TestReply(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/reply" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		gotBody = body
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Reply(context.Background(), "rtoken-1", NewTextMessage("hello")); err != nil {
		t.Fatalf("reply: %v", err)
	}

	var decoded struct {
		ReplyToken string `json:"replyToken"`
		Messages   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if decoded.ReplyToken != "rtoken-1" {
		t.Fatalf("unexpected reply token %q", decoded.ReplyToken)
	}
	if len(decoded.Messages) != 1 || decoded.Messages[0].Type != "text" || decoded.Messages[0].Text != "hello" {
		t.Fatalf("unexpected messages: %+v", decoded.Messages)
	}
}

func TestReplyValidation(t *testing.T) {
	client, err := New(Config{ChannelAccessToken: "token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Reply(context.Background(), "", NewTextMessage("x")); err == nil {
		t.Fatalf("expected reply token validation error")
	}
	if err := client.Reply(context.Background(), "rtoken"); err == nil {
		t.Fatalf("expected empty messages validation error")
	}
}

func TestPushSetsRetryKey(t *testing.T) {
	var retryKeys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/push" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		retryKeys = append(retryKeys, r.Header.Get("X-Line-Retry-Key"))
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"to":"U1"`) {
			t.Fatalf("expected push target in body, got %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	for i := 0; i < 2; i++ {
		if err := client.Push(context.Background(), "U1", NewTextMessage("hi")); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if len(retryKeys) != 2 || retryKeys[0] == "" || retryKeys[0] == retryKeys[1] {
		t.Fatalf("expected distinct non-empty retry keys, got %v", retryKeys)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token","details":[{"message":"invalid","property":"replyToken"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Reply(context.Background(), "expired", NewTextMessage("late"))
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "Invalid reply token") || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"server error"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Push(context.Background(), "U1", NewTextMessage("once")); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestRichMenuLifecycle(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/v2/bot/richmenu":
			var menu RichMenu
			if err := json.NewDecoder(r.Body).Decode(&menu); err != nil {
				t.Fatalf("decode rich menu: %v", err)
			}
			if menu.Name == "" || len(menu.Areas) == 0 {
				t.Fatalf("incomplete rich menu: %+v", menu)
			}
			w.Write([]byte(`{"richMenuId":"richmenu-123"}`))
		case "/v2/bot/richmenu/richmenu-123/content":
			if got := r.Header.Get("Content-Type"); got != "image/png" {
				t.Fatalf("unexpected content type %q", got)
			}
			body, _ := io.ReadAll(r.Body)
			if len(body) == 0 {
				t.Fatalf("expected image bytes")
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{}`))
		case "/v2/bot/user/all/richmenu/richmenu-123":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	menu := RichMenu{
		Size:        RichMenuSize{Width: 2500, Height: 843},
		Name:        "todo-menu",
		ChatBarText: "Menu",
		Areas: []RichMenuArea{
			{
				Bounds: RichMenuBounds{X: 0, Y: 0, Width: 2500, Height: 843},
				Action: *NewURIAction("Open my list", "https://example.test"),
			},
		},
	}
	id, err := client.CreateRichMenu(context.Background(), menu)
	if err != nil {
		t.Fatalf("create rich menu: %v", err)
	}
	if id != "richmenu-123" {
		t.Fatalf("unexpected rich menu id %q", id)
	}
	if err := client.UploadRichMenuImage(context.Background(), id, "image/png", []byte{0x89, 0x50}); err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if err := client.SetDefaultRichMenu(context.Background(), id); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected three API calls, got %v", paths)
	}
}
