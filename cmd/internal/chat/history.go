package chat

import "context"

// HistoryPage is one page of room history, oldest message first.
// NextCursor is empty when no older page exists.
type HistoryPage struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"nextCursor"`
}

// HistoryPager loads room history backwards from a cursor. An empty cursor
// means the newest page.
type HistoryPager interface {
	PageBefore(ctx context.Context, roomID, cursor string, limit int) (HistoryPage, error)
}

// MergeHistory combines paged history with live messages received since the
// view opened. History order is preserved, live messages follow in arrival
// order, and any live message already present in history is dropped by id
// so refetching a page never duplicates it.
func MergeHistory(history, live []Message) []Message {
	seen := make(map[string]struct{}, len(history))
	for _, m := range history {
		seen[m.ID] = struct{}{}
	}

	out := make([]Message, 0, len(history)+len(live))
	out = append(out, history...)
	for _, m := range live {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
