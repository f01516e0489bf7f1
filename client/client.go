// Package client speaks the relay's line protocol from the user side.
package client

import (
	"chat-relay/errors"
	"chat-relay/protocol"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Client is one connection to a relay server. Receive must be called from a
// single goroutine; the send methods are safe for concurrent use.
type Client struct {
	log      *slog.Logger
	conn     net.Conn
	reader   *protocol.LineReader
	writeMu  sync.Mutex
	username string
}

func Dial(ctx context.Context, address string, log *slog.Logger) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	log.Debug("Connected to relay", "address", address)
	return &Client{
		log:    log,
		conn:   conn,
		reader: protocol.NewLineReader(conn),
	}, nil
}

// Login authenticates an existing account and returns the server greeting.
func (c *Client) Login(username, password string) (string, error) {
	return c.authenticate(protocol.NewLogin(username, password))
}

// Register creates the account and logs in with it.
func (c *Client) Register(username, password string) (string, error) {
	return c.authenticate(protocol.NewRegister(username, password))
}

func (c *Client) authenticate(request protocol.Message) (string, error) {
	if err := c.send(request); err != nil {
		return "", err
	}
	response, err := c.Receive()
	if err != nil {
		return "", fmt.Errorf("read auth response: %w", err)
	}

	switch response.Kind() {
	case protocol.KindAuthSuccess:
		c.username = request.Sender()
		c.log.Debug("Authenticated", "username", c.username)
		return response.Body(), nil
	case protocol.KindAuthFailure:
		return "", fmt.Errorf("%w: %s", errors.ErrInvalidCredentials, response.Body())
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnexpectedKind, response.Kind())
	}
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) Broadcast(body string) error {
	return c.send(protocol.NewChat(c.username, body))
}

func (c *Client) Private(target, body string) error {
	return c.send(protocol.NewPrivate(c.username, target, body))
}

// Quit asks the server to end the session. The server then closes the
// connection, so a pending Receive returns an error.
func (c *Client) Quit() error {
	return c.send(protocol.NewDisconnect(c.username))
}

// Receive blocks for the next message from the server.
func (c *Client) Receive() (protocol.Message, error) {
	line, err := c.reader.ReadLine()
	if err != nil {
		return protocol.Message{}, err
	}
	return protocol.Decode(line), nil
}

// ReceiveTimeout is Receive with a read deadline.
func (c *Client) ReceiveTimeout(timeout time.Duration) (protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return protocol.Message{}, err
	}
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	return c.Receive()
}

// SendRaw writes a line as is, without encoding.
func (c *Client) SendRaw(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(msg protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.WriteMessage(c.conn, msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Kind(), err)
	}
	return nil
}
