package runtime

import (
	"chat-relay/protocol"
	"chat-relay/queue"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

type SessionState int32

const (
	SessionCreated SessionState = iota
	SessionSending
	SessionDisconnected
)

func (s SessionState) String() string {
	switch s {
	case SessionCreated:
		return "CREATED"
	case SessionSending:
		return "SENDING"
	case SessionDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

type SessionConfig struct {
	// PollInterval bounds how long the sender waits on an empty queue
	// before checking liveness again.
	PollInterval time.Duration
	// WriteTimeout is the deadline for writing one line, zero disables it.
	WriteTimeout time.Duration
}

// Session owns one authenticated connection. The handler goroutine reads
// through ReceiveLine while the sender goroutine drains the outbox onto the
// socket.
type Session struct {
	id       string
	username string
	conn     net.Conn
	reader   *protocol.LineReader
	log      *slog.Logger
	cfg      SessionConfig

	outbox *queue.Queue[protocol.Message]
	alive  atomic.Bool
	state  atomic.Int32

	// startOnce is shared with Disconnect so a session disconnected before
	// its sender started can never start one.
	startOnce  sync.Once
	closeOnce  sync.Once
	senderDone chan struct{}
}

// NewSession takes over conn and the reader already used for the handshake,
// so bytes buffered past the handshake line are not lost.
func NewSession(log *slog.Logger, conn net.Conn, reader *protocol.LineReader, id, username string, cfg SessionConfig) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	s := &Session{
		id:         id,
		username:   username,
		conn:       conn,
		reader:     reader,
		log:        log.With("username", username, "conn_id", id),
		cfg:        cfg,
		outbox:     queue.New[protocol.Message](),
		senderDone: make(chan struct{}),
	}
	s.alive.Store(true)
	return s
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Username() string    { return s.username }
func (s *Session) Alive() bool         { return s.alive.Load() }
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }
func (s *Session) RemoteAddr() string  { return s.conn.RemoteAddr().String() }
func (s *Session) Pending() int        { return s.outbox.Len() }

// StartSender launches the delivery goroutine. Only the first call does
// anything.
func (s *Session) StartSender() {
	s.startOnce.Do(func() {
		s.state.CompareAndSwap(int32(SessionCreated), int32(SessionSending))
		go s.deliver()
	})
}

// QueueMessage never blocks. It reports whether the message was accepted.
func (s *Session) QueueMessage(msg protocol.Message) bool {
	if !s.alive.Load() {
		return false
	}
	return s.outbox.Push(msg)
}

// ReceiveLine blocks until the peer sends a full line. Any error, including
// io.EOF and a closed connection, ends the session's read side except
// errors.ErrLineTooLong, after which reading can resume.
func (s *Session) ReceiveLine() (string, error) {
	return s.reader.ReadLine()
}

// Disconnect is idempotent. When it returns the socket is closed and the
// sender goroutine has exited. Concurrent callers all wait for the first one
// to finish.
func (s *Session) Disconnect() {
	s.closeOnce.Do(func() {
		s.alive.Store(false)
		s.outbox.Shutdown()
		if err := s.conn.Close(); err != nil {
			s.log.Debug("Closing connection", "error", err)
		}
		s.startOnce.Do(func() { close(s.senderDone) })
		<-s.senderDone
		s.state.Store(int32(SessionDisconnected))
		s.log.Debug("Session disconnected")
	})
}

func (s *Session) deliver() {
	defer close(s.senderDone)
	defer func() {
		if r := recover(); r != nil {
			s.alive.Store(false)
			s.log.Error("Sender panicked", "panic", r)
		}
	}()

	for {
		msg, ok := s.outbox.PopTimeout(s.cfg.PollInterval)
		if !ok {
			if s.outbox.Closed() || !s.alive.Load() {
				s.alive.Store(false)
				return
			}
			continue
		}
		// Whatever is still queued once Disconnect started is dropped
		if !s.alive.Load() {
			return
		}
		if err := s.write(msg); err != nil {
			s.alive.Store(false)
			s.log.Warn("Write failed, sender stopped", "error", err)
			return
		}
	}
}

func (s *Session) write(msg protocol.Message) error {
	if s.cfg.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	return protocol.WriteMessage(s.conn, msg)
}
