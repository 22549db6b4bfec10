package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fintrack/fintrack-be/internal/models"
)

// watchDebounce is the quiet period applied to change-event bursts before
// refetching.
const watchDebounce = 500 * time.Millisecond

// Watch subscribes to the server's change feed and invokes onRefresh with a
// fresh transaction snapshot after each (debounced) burst of change events.
// One initial snapshot is delivered before any event. Blocks until ctx is
// done or the connection fails.
func (c *Client) Watch(ctx context.Context, filter models.TransactionFilter, onRefresh func([]models.Transaction)) error {
	if !c.session.Active() {
		return fmt.Errorf("not logged in")
	}

	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial change feed: %w", err)
	}
	defer conn.Close()

	refetch := func() {
		txs, err := c.AllTransactions(ctx, filter)
		if err != nil {
			return
		}
		onRefresh(txs)
	}

	debouncer := NewDebouncer(watchDebounce, refetch)
	defer debouncer.Close()

	refetch()

	// Unblock the read loop when the caller gives up.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("change feed closed: %w", err)
		}
		debouncer.Signal()
	}
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/ws"
	q := u.Query()
	q.Set("token", c.session.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
