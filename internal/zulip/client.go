// Package zulip is a minimal client for the Zulip REST and real-time events
// APIs, covering what the bot needs: sending messages, resolving users and
// streams, and long-polling an event queue.
package zulip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a user or stream lookup matches nothing.
var ErrNotFound = errors.New("zulip: not found")

type Client struct {
	site   string // e.g. https://chat.example.com
	email  string
	apiKey string
	http   *http.Client
}

func New(site, email, apiKey string) *Client {
	return &Client{
		site:   strings.TrimRight(site, "/"),
		email:  email,
		apiKey: apiKey,
		// Long polls hold the connection open; the server answers within 90s.
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Message is an outgoing message. Type is "private" or "stream"; To is an
// email address for private messages, a stream name or id otherwise.
type Message struct {
	Type    string
	To      string
	Topic   string
	Content string
}

func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("type", msg.Type)
	form.Set("to", msg.To)
	form.Set("content", msg.Content)
	if msg.Type == "stream" {
		form.Set("topic", msg.Topic)
	}

	var resp apiResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/messages", form, &resp); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

type User struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsBot    bool   `json:"is_bot"`
}

// GetUserByName resolves a full name, as it appears in an @-mention, to a
// user. Comparison is case-insensitive.
func (c *Client) GetUserByName(ctx context.Context, fullName string) (*User, error) {
	var resp struct {
		apiResponse
		Members []User `json:"members"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/users", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for i := range resp.Members {
		if strings.EqualFold(resp.Members[i].FullName, fullName) {
			return &resp.Members[i], nil
		}
	}
	return nil, ErrNotFound
}

func (c *Client) GetStreamID(ctx context.Context, name string) (int, error) {
	form := url.Values{}
	form.Set("stream", name)

	var resp struct {
		apiResponse
		StreamID int `json:"stream_id"`
	}
	err := c.call(ctx, http.MethodGet, "/api/v1/get_stream_id?"+form.Encode(), nil, &resp)
	if err != nil {
		if isBadRequest(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to resolve stream %q: %w", name, err)
	}
	return resp.StreamID, nil
}

// Queue identifies a registered event queue on the server.
type Queue struct {
	QueueID     string `json:"queue_id"`
	LastEventID int    `json:"last_event_id"`
}

func (c *Client) RegisterQueue(ctx context.Context) (*Queue, error) {
	form := url.Values{}
	form.Set("event_types", `["message"]`)

	var resp struct {
		apiResponse
		Queue
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/register", form, &resp); err != nil {
		return nil, fmt.Errorf("failed to register event queue: %w", err)
	}
	return &resp.Queue, nil
}

// IncomingMessage is a message event payload.
type IncomingMessage struct {
	ID             int    `json:"id"`
	SenderEmail    string `json:"sender_email"`
	SenderFullName string `json:"sender_full_name"`
	Content        string `json:"content"`
	Type           string `json:"type"` // "private" or "stream"
	StreamID       int    `json:"stream_id"`
	Subject        string `json:"subject"`
	Timestamp      int64  `json:"timestamp"`
}

type Event struct {
	ID      int              `json:"id"`
	Type    string           `json:"type"`
	Message *IncomingMessage `json:"message"`
}

// GetEvents long-polls the queue for new events. Blocks until events arrive,
// the server's heartbeat fires, or ctx is cancelled.
func (c *Client) GetEvents(ctx context.Context, q *Queue) ([]Event, error) {
	form := url.Values{}
	form.Set("queue_id", q.QueueID)
	form.Set("last_event_id", strconv.Itoa(q.LastEventID))

	var resp struct {
		apiResponse
		Events []Event `json:"events"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/events?"+form.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	for _, ev := range resp.Events {
		if ev.ID > q.LastEventID {
			q.LastEventID = ev.ID
		}
	}
	return resp.Events, nil
}

type apiResponse struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
	Code   string `json:"code"`
}

type apiError struct {
	status int
	code   string
	msg    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("zulip: %s (http %d, code %s)", e.msg, e.status, e.code)
}

func isBadRequest(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.status == http.StatusBadRequest
}

func (c *Client) call(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.site+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.email, c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}

	var probe apiResponse
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("unexpected response (http %d): %w", httpResp.StatusCode, err)
	}
	if probe.Result != "success" {
		return &apiError{status: httpResp.StatusCode, code: probe.Code, msg: probe.Msg}
	}

	return json.Unmarshal(data, out)
}
