package enqueue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Thread fetches the playlist document of a thread.
//
// Item order is preserved. Returns *Error for non-2xx responses and an
// error wrapping ErrMalformedResponse if the body is not a thread document.
func (c *Client) Thread(ctx context.Context, board, threadID string) (*Thread, error) {
	if board == "" || threadID == "" {
		return nil, ErrInvalidThread
	}

	endpoint := c.baseURL.JoinPath("enqueue", board, "thread", threadID).String()

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload threadPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Webms == nil {
		return nil, fmt.Errorf("%w: missing webms", ErrMalformedResponse)
	}

	thread := &Thread{
		Subject: payload.Subject,
		Webms:   make([]Webm, 0, len(*payload.Webms)),
	}
	for _, w := range *payload.Webms {
		thread.Webms = append(thread.Webms, Webm{
			URL:       c.resolve(w.URL),
			Filename:  w.Filename,
			Thumbnail: c.resolve(w.Thumbnail),
		})
	}

	return thread, nil
}
