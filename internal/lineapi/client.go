package lineapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
)

const (
	defaultBaseURL     = "https://api.line.me"
	defaultDataBaseURL = "https://api-data.line.me"
	defaultUserAgent   = "line-todo-bot/0.1"
)

// Config controls how the LINE Messaging API client behaves.
type Config struct {
	BaseURL            string
	DataBaseURL        string
	ChannelAccessToken string
	Timeout            time.Duration
	HTTPClient         *http.Client
	Logger             *slog.Logger
	UserAgent          string
}

// Client wraps the LINE Messaging API endpoints the bot needs. Every call is
// a single attempt: the platform acknowledges delivery only through the HTTP
// status, and reply tokens are single-use, so retrying here would risk
// duplicate pushes without ever rescuing a reply.
type Client struct {
	token       string
	baseURL     string
	dataBaseURL string
	httpClient  *http.Client
	logger      *slog.Logger
	userAgent   string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ChannelAccessToken) == "" {
		return nil, errors.New("lineapi: channel access token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	dataBaseURL := strings.TrimSpace(cfg.DataBaseURL)
	if dataBaseURL == "" {
		dataBaseURL = defaultDataBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		token:       cfg.ChannelAccessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		dataBaseURL: strings.TrimRight(dataBaseURL, "/"),
		httpClient:  httpClient,
		logger:      logger,
		userAgent:   userAgent,
	}, nil
}

// Reply answers an inbound event using its single-use reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	if strings.TrimSpace(replyToken) == "" {
		return errors.New("lineapi: reply token required")
	}
	if len(messages) == 0 {
		return errors.New("lineapi: at least one message required")
	}
	body, err := json.Marshal(struct {
		ReplyToken string    `json:"replyToken"`
		Messages   []Message `json:"messages"`
	}{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("lineapi: marshal reply body: %w", err)
	}
	_, err = c.invoke(ctx, http.MethodPost, c.baseURL, "/v2/bot/message/reply", body, "application/json", nil)
	return err
}

// Push sends messages directly to a user id, independent of any inbound
// event. A fresh X-Line-Retry-Key guards against platform-side duplication.
func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("lineapi: push target required")
	}
	if len(messages) == 0 {
		return errors.New("lineapi: at least one message required")
	}
	body, err := json.Marshal(struct {
		To       string    `json:"to"`
		Messages []Message `json:"messages"`
	}{
		To:       to,
		Messages: messages,
	})
	if err != nil {
		return fmt.Errorf("lineapi: marshal push body: %w", err)
	}
	headers := map[string]string{"X-Line-Retry-Key": uuid.NewString()}
	_, err = c.invoke(ctx, http.MethodPost, c.baseURL, "/v2/bot/message/push", body, "application/json", headers)
	return err
}

// CreateRichMenu registers a rich menu definition and returns its id.
func (c *Client) CreateRichMenu(ctx context.Context, menu RichMenu) (string, error) {
	body, err := json.Marshal(menu)
	if err != nil {
		return "", fmt.Errorf("lineapi: marshal rich menu: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, c.baseURL, "/v2/bot/richmenu", body, "application/json", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		RichMenuID string `json:"richMenuId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("lineapi: decode rich menu response: %w", err)
	}
	if resp.RichMenuID == "" {
		return "", errors.New("lineapi: rich menu id missing from response")
	}
	return resp.RichMenuID, nil
}

// UploadRichMenuImage attaches the menu image. Rich menu content lives on the
// api-data host, not the main API host.
func (c *Client) UploadRichMenuImage(ctx context.Context, richMenuID, contentType string, image []byte) error {
	if strings.TrimSpace(richMenuID) == "" {
		return errors.New("lineapi: rich menu id required")
	}
	if len(image) == 0 {
		return errors.New("lineapi: rich menu image required")
	}
	if contentType == "" {
		contentType = "image/png"
	}
	path := fmt.Sprintf("/v2/bot/richmenu/%s/content", richMenuID)
	_, err := c.invoke(ctx, http.MethodPost, c.dataBaseURL, path, image, contentType, nil)
	return err
}

// SetDefaultRichMenu links the menu to every user of the bot.
func (c *Client) SetDefaultRichMenu(ctx context.Context, richMenuID string) error {
	if strings.TrimSpace(richMenuID) == "" {
		return errors.New("lineapi: rich menu id required")
	}
	path := fmt.Sprintf("/v2/bot/user/all/richmenu/%s", richMenuID)
	_, err := c.invoke(ctx, http.MethodPost, c.baseURL, path, nil, "", nil)
	return err
}

// RichMenu describes a rich menu layout.
type RichMenu struct {
	Size        RichMenuSize   `json:"size"`
	Selected    bool           `json:"selected"`
	Name        string         `json:"name"`
	ChatBarText string         `json:"chatBarText"`
	Areas       []RichMenuArea `json:"areas"`
}

type RichMenuSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RichMenuArea struct {
	Bounds RichMenuBounds `json:"bounds"`
	Action URIAction      `json:"action"`
}

type RichMenuBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (c *Client) invoke(ctx context.Context, method, base, path string, body []byte, contentType string, headers map[string]string) ([]byte, error) {
	fullURL := base + "/" + strings.TrimLeft(path, "/")
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("lineapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		ct := contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("lineapi: http error: %w", err)
	}
	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("lineapi: read response: %w", readErr)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	apiErr := decodeAPIError(resp.StatusCode, data)
	c.logger.Warn("line api call failed",
		"path", path,
		"status", resp.StatusCode,
		"error", apiErr,
	)
	return nil, apiErr
}

type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
	Details    []struct {
		Message  string `json:"message,omitempty"`
		Property string `json:"property,omitempty"`
	} `json:"details,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lineapi: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("lineapi: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &apiError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	parsed.StatusCode = status
	return &parsed
}
