package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Room is the REST view of a chat room.
type Room struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	UnreadCount  int       `json:"unreadCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Backend calls the marketplace REST API for the chat data that does not
// travel over the socket: room metadata, history pages, and read receipts.
// It implements HistoryPager.
type Backend struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

// NewBackend builds a backend client for baseURL. A nil httpClient gets a
// client with a 15s timeout.
func NewBackend(baseURL string, creds CredentialSource, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		creds:   creds,
	}
}

// Room fetches one room's metadata.
func (b *Backend) Room(ctx context.Context, roomID string) (Room, error) {
	var room Room
	if roomID == "" {
		return room, fmt.Errorf("backend: empty room id")
	}
	err := b.getJSON(ctx, "/api/chat/rooms/"+url.PathEscape(roomID), nil, &room)
	return room, err
}

// PageBefore fetches up to limit messages older than cursor. An empty
// cursor fetches the newest page.
func (b *Backend) PageBefore(ctx context.Context, roomID, cursor string, limit int) (HistoryPage, error) {
	var page HistoryPage
	if roomID == "" {
		return page, fmt.Errorf("backend: empty room id")
	}
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("before", cursor)
	}
	err := b.getJSON(ctx, "/api/chat/rooms/"+url.PathEscape(roomID)+"/messages", q, &page)
	return page, err
}

// PageAfter fetches up to limit messages newer than cursor, for catching up
// after a gap. The cursor is required; catching up from nothing is a
// PageBefore with an empty cursor.
func (b *Backend) PageAfter(ctx context.Context, roomID, cursor string, limit int) (HistoryPage, error) {
	var page HistoryPage
	if roomID == "" {
		return page, fmt.Errorf("backend: empty room id")
	}
	if cursor == "" {
		return page, fmt.Errorf("backend: empty cursor")
	}
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("after", cursor)
	err := b.getJSON(ctx, "/api/chat/rooms/"+url.PathEscape(roomID)+"/messages", q, &page)
	return page, err
}

// MarkRead reports the given messages as read. A nil or empty id list is a
// no-op.
func (b *Backend) MarkRead(ctx context.Context, roomID string, messageIDs []string) error {
	if roomID == "" {
		return fmt.Errorf("backend: empty room id")
	}
	if len(messageIDs) == 0 {
		return nil
	}

	body, err := json.Marshal(struct {
		MessageIDs []string `json:"messageIds"`
	}{MessageIDs: messageIDs})
	if err != nil {
		return fmt.Errorf("backend: marshal mark-read: %w", err)
	}

	req, err := b.newRequest(ctx, http.MethodPost, "/api/chat/rooms/"+url.PathEscape(roomID)+"/read", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: mark read: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("backend: mark read: status %d", res.StatusCode)
	}
	return nil
}

func (b *Backend) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	p := path
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	req, err := b.newRequest(ctx, http.MethodGet, p, nil)
	if err != nil {
		return err
	}

	res, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("backend: %s: status %d", path, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: %s: decode: %w", path, err)
	}
	return nil
}

func (b *Backend) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if b.creds != nil {
		token, err := b.creds.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("backend: read credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
