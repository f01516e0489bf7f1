package client

import (
	"chat-relay/errors"
	"chat-relay/protocol"
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRelay accepts one connection, hands every received line to lines and
// writes the scripted replies after the first line.
func fakeRelay(t *testing.T, replies ...protocol.Message) (string, <-chan string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	lines := make(chan string, 16)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := protocol.NewLineReader(conn)
		first := true
		for {
			line, err := reader.ReadLine()
			if err != nil {
				close(lines)
				return
			}
			lines <- line
			if first {
				first = false
				for _, reply := range replies {
					_ = protocol.WriteMessage(conn, reply)
				}
			}
		}
	}()
	return listener.Addr().String(), lines
}

func dial(t *testing.T, address string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), address, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_LoginAndSend(t *testing.T) {
	req := require.New(t)
	address, lines := fakeRelay(t, protocol.NewAuthSuccess("welcome alice"), protocol.NewChat("bob", "hi"))
	c := dial(t, address)

	// When logging in
	greeting, err := c.Login("alice", "pw1234")

	// Then the request carries the credentials and the greeting comes back
	req.NoError(err)
	req.Equal("welcome alice", greeting)
	req.Equal("alice", c.Username())
	req.Equal(protocol.NewLogin("alice", "pw1234"), protocol.Decode(<-lines))

	// And the messages that follow are received in order
	msg, err := c.ReceiveTimeout(time.Second)
	req.NoError(err)
	req.Equal(protocol.NewChat("bob", "hi"), msg)

	// And sends use the authenticated name
	req.NoError(c.Broadcast("hello|world"))
	req.NoError(c.Private("bob", "psst"))
	req.NoError(c.Quit())
	req.Equal(protocol.NewChat("alice", "hello|world"), protocol.Decode(<-lines))
	req.Equal(protocol.NewPrivate("alice", "bob", "psst"), protocol.Decode(<-lines))
	req.Equal(protocol.KindDisconnect, protocol.Decode(<-lines).Kind())
}

func TestClient_AuthFailure(t *testing.T) {
	req := require.New(t)
	address, lines := fakeRelay(t, protocol.NewAuthFailure("username 'alice' is already taken"))
	c := dial(t, address)

	_, err := c.Register("alice", "pw1234")

	req.ErrorIs(err, errors.ErrInvalidCredentials)
	req.Contains(err.Error(), "already taken")
	req.Empty(c.Username())
	req.Equal(protocol.KindRegisterRequest, protocol.Decode(<-lines).Kind())
}

func TestClient_UnexpectedAuthResponse(t *testing.T) {
	req := require.New(t)
	address, _ := fakeRelay(t, protocol.NewChat("mallory", "surprise"))
	c := dial(t, address)

	_, err := c.Login("alice", "pw1234")
	req.ErrorIs(err, errors.ErrUnexpectedKind)
}

func TestClient_ReceiveTimeout(t *testing.T) {
	req := require.New(t)
	address, _ := fakeRelay(t)
	c := dial(t, address)

	_, err := c.ReceiveTimeout(30 * time.Millisecond)
	var netErr net.Error
	req.ErrorAs(err, &netErr)
	req.True(netErr.Timeout())
}

func TestDial_Refused(t *testing.T) {
	req := require.New(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	address := listener.Addr().String()
	req.NoError(listener.Close())

	_, err = Dial(context.Background(), address, slog.Default())
	req.Error(err)
}
