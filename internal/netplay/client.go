package netplay

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
)

// Client is a websocket link to a relay server. It implements
// multiplayer.Conn: calls queue messages for the writer goroutine and
// decoded server events arrive on Events.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	out    chan Message
	events chan multiplayer.SessionEvent
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

var _ multiplayer.Conn = (*Client)(nil)

// Dial connects to a relay. rawURL is the server's /play endpoint
// (ws:// or wss://); name is the display name shown to the opponent.
func Dial(ctx context.Context, rawURL, name string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("netplay: bad url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/play"
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("netplay: dial %s: %w", u.Host, err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Client{
		conn:   conn,
		logger: logger,
		out:    make(chan Message, sendBuffer),
		events: make(chan multiplayer.SessionEvent, sendBuffer),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

func (c *Client) Host(mode engine.Mode) { c.send(Message{Type: TypeHost, Mode: mode.String()}) }
func (c *Client) Join(code string)      { c.send(Message{Type: TypeJoin, Code: code}) }
func (c *Client) Leave()                { c.send(Message{Type: TypeLeave}) }

func (c *Client) SendCommand(cmd engine.Command) {
	m, err := EncodeCommand(cmd)
	if err != nil {
		c.logger.Error("encoding command", "err", err)
		return
	}
	c.send(m)
}

func (c *Client) RequestRandom(seat, batch int) {
	c.send(Message{Type: TypeRandom, Seat: seat, Batch: batch})
}

func (c *Client) Events() <-chan multiplayer.SessionEvent { return c.events }
func (c *Client) Done() <-chan struct{}                   { return c.done }

// Err returns why the connection ended, or nil while it is open.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close says goodbye to the server and releases the connection.
func (c *Client) Close() error {
	c.fail(ErrClosed)
	return nil
}

func (c *Client) fail(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close()
	})
}

func (c *Client) send(m Message) {
	select {
	case c.out <- m:
	case <-c.done:
	}
}

func (c *Client) readLoop() {
	defer close(c.events)

	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	// the server pings too; answering keeps our deadline fresh as well
	c.conn.SetPingHandler(func(data string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			c.fail(fmt.Errorf("netplay: read: %w", err))
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		evt, err := DecodeEvent(m)
		if err != nil {
			c.logger.Warn("bad server message", "type", m.Type, "err", err)
			continue
		}
		select {
		case c.events <- evt:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case m := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				c.fail(fmt.Errorf("netplay: write: %w", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.fail(fmt.Errorf("netplay: ping: %w", err))
				return
			}
		case <-c.done:
			return
		}
	}
}
