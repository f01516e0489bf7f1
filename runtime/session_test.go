package runtime

import (
	"chat-relay/protocol"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var testSessionConfig = SessionConfig{PollInterval: 20 * time.Millisecond, WriteTimeout: time.Second}

func newPipeSession(t *testing.T, username string) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	session := NewSession(log, server, protocol.NewLineReader(server), uuid.NewString(), username, testSessionConfig)
	return session, client
}

func TestSession_DeliversInOrder(t *testing.T) {
	req := require.New(t)
	session, client := newPipeSession(t, "alice")
	defer session.Disconnect()

	// Given a session with a running sender
	req.Equal(SessionCreated, session.State())
	session.StartSender()
	session.StartSender()
	req.Equal(SessionSending, session.State())

	// When messages are queued
	req.True(session.QueueMessage(protocol.NewChat("bob", "one")))
	req.True(session.QueueMessage(protocol.NewChat("bob", "two")))
	req.True(session.QueueMessage(protocol.NewServerNotice("three")))

	// Then the peer reads them in the same order
	reader := protocol.NewLineReader(client)
	for _, expected := range []string{"one", "two", "three"} {
		line, err := reader.ReadLine()
		req.NoError(err)
		req.Equal(expected, protocol.Decode(line).Body())
	}
}

func TestSession_Disconnect_Idempotent(t *testing.T) {
	req := require.New(t)
	session, _ := newPipeSession(t, "alice")
	session.StartSender()

	// When several goroutines disconnect at once
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Disconnect()
		}()
	}
	wg.Wait()

	// Then every caller returned after the single teardown
	req.Equal(SessionDisconnected, session.State())
	req.False(session.Alive())
	req.False(session.QueueMessage(protocol.NewChat("bob", "late")))

	select {
	case <-session.senderDone:
	default:
		req.Fail("sender still running after Disconnect returned")
	}
}

func TestSession_DisconnectBeforeStart(t *testing.T) {
	req := require.New(t)
	session, _ := newPipeSession(t, "alice")

	done := make(chan struct{})
	go func() {
		session.Disconnect()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.FailNow("Disconnect blocked on a sender that never started")
	}

	// A sender can no longer be started
	session.StartSender()
	req.Equal(SessionDisconnected, session.State())
}

func TestSession_QueuedMessagesNotWrittenAfterDisconnect(t *testing.T) {
	req := require.New(t)
	session, client := newPipeSession(t, "alice")

	// Given a backlog nobody reads
	for i := 0; i < 5; i++ {
		session.QueueMessage(protocol.NewChat("bob", "pending"))
	}
	session.StartSender()

	// When the session is disconnected
	session.Disconnect()

	// Then the peer only sees the end of the stream
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, err := protocol.NewLineReader(client).ReadLine()
	req.Error(err)
}

func TestSession_WriteFailureClearsLiveness(t *testing.T) {
	req := require.New(t)
	session, client := newPipeSession(t, "alice")
	defer session.Disconnect()
	session.StartSender()

	// Given a peer that went away
	req.NoError(client.Close())

	// When something is sent
	session.QueueMessage(protocol.NewChat("bob", "hello?"))

	// Then the sender gives up and the session is no longer live
	req.Eventually(func() bool { return !session.Alive() }, time.Second, 5*time.Millisecond)
	req.False(session.QueueMessage(protocol.NewChat("bob", "dropped")))

	// And Disconnect still tears it down
	session.Disconnect()
	req.Equal(SessionDisconnected, session.State())
}

func TestSession_ReceiveLine_KeepsHandshakeBuffer(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer client.Close()

	// Given the handshake and a first chat line arriving in one write
	go func() {
		_, _ = client.Write([]byte("1|alice|pw1234||\n5|alice|||hello\n"))
	}()
	reader := protocol.NewLineReader(server)
	line, err := reader.ReadLine()
	req.NoError(err)
	req.Equal(protocol.KindLoginRequest, protocol.Decode(line).Kind())

	// When the reader is handed to the session
	session := NewSession(slog.Default(), server, reader, uuid.NewString(), "alice", testSessionConfig)
	defer session.Disconnect()

	// Then the buffered line is not lost
	line, err = session.ReceiveLine()
	req.NoError(err)
	req.Equal(protocol.NewChat("alice", "hello"), protocol.Decode(line))

	// And a disconnect unblocks a pending read
	errs := make(chan error, 1)
	go func() {
		_, err := session.ReceiveLine()
		errs <- err
	}()
	session.Disconnect()
	select {
	case err := <-errs:
		req.Error(err)
	case <-time.After(time.Second):
		req.Fail("ReceiveLine not unblocked by Disconnect")
	}
}

func TestSessionState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("SENDING", SessionSending.String())
	req.Equal("SessionState(9)", SessionState(9).String())
}
