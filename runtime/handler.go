package runtime

import (
	"chat-relay/errors"
	"chat-relay/protocol"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
)

const rejectWriteTimeout = 5 * time.Second

// handle runs the whole life of one connection: handshake, message loop and
// cleanup. A panic is contained to this connection.
func (s *RelayServer) handle(conn net.Conn) {
	connID := uuid.NewString()
	log := s.log.With("conn_id", connID, "addr", conn.RemoteAddr().String())
	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panicked", "panic", r, "critical", true)
			_ = conn.Close()
		}
	}()

	if !s.trackPending(conn) {
		_ = conn.Close()
		return
	}
	session, ok := s.handshake(log, conn, connID)
	s.untrackPending(conn)
	if !ok {
		return
	}
	defer s.finish(session)

	s.messageLoop(session)
}

// handshake authenticates the first line and, on success, returns a
// registered session whose sender is running. On failure the connection is
// closed.
func (s *RelayServer) handshake(log *slog.Logger, conn net.Conn, connID string) (*Session, bool) {
	reader := protocol.NewLineReader(conn)
	if s.cfg.HandshakeTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	}

	line, err := reader.ReadLine()
	if stderrors.Is(err, errors.ErrLineTooLong) {
		log.Warn("Handshake line too long")
		s.reject(log, conn, err.Error())
		return nil, false
	}
	if err != nil {
		log.Debug("Connection closed before handshake", "error", err)
		_ = conn.Close()
		return nil, false
	}

	request := protocol.Decode(line)
	if !request.Kind().IsAuthRequest() {
		reason := "expected a login or register request"
		if request.IsError() {
			reason = request.Body()
		}
		log.Warn("Invalid handshake", "kind", request.Kind(), "reason", reason)
		s.reject(log, conn, reason)
		return nil, false
	}

	username := request.Sender()
	log = log.With("username", username)

	switch request.Kind() {
	case protocol.KindRegisterRequest:
		if err := s.store.AddUser(username, request.Password()); err != nil {
			log.Info("Registration refused", "error", err)
			s.reject(log, conn, registrationFailure(username, err))
			return nil, false
		}
	case protocol.KindLoginRequest:
		if !s.store.ValidateUser(username, request.Password()) {
			log.Info("Login refused, invalid credentials")
			s.reject(log, conn, "invalid username or password")
			return nil, false
		}
	}

	_ = conn.SetReadDeadline(time.Time{})
	session := NewSession(s.log, conn, reader, connID, username, SessionConfig{
		PollInterval: s.cfg.SenderPollInterval,
		WriteTimeout: s.cfg.WriteTimeout,
	})

	// Queued before the session becomes visible so nothing routed to it can
	// overtake the auth response.
	others := s.registry.Usernames()
	session.QueueMessage(protocol.NewAuthSuccess(fmt.Sprintf("welcome %s", username)))
	session.QueueMessage(protocol.NewServerNotice(welcomeText(username, others)))

	if !s.registry.Add(session) {
		log.Info("Login refused, user already online")
		s.reject(log, conn, fmt.Sprintf("user '%s' is already online", username))
		session.Disconnect()
		return nil, false
	}
	if s.State() != StateRunning {
		s.registry.Remove(session)
		session.Disconnect()
		return nil, false
	}

	session.StartSender()
	log.Info("User joined", "kind", request.Kind(), "online", s.registry.Count())
	s.notice(fmt.Sprintf("*** %s joined the chat ***", username), username)
	return session, true
}

// reject answers with an auth failure and closes the connection.
func (s *RelayServer) reject(log *slog.Logger, conn net.Conn, reason string) {
	s.counters.IncrFailedLogins()
	_ = conn.SetWriteDeadline(time.Now().Add(rejectWriteTimeout))
	if err := protocol.WriteMessage(conn, protocol.NewAuthFailure(reason)); err != nil {
		log.Debug("Unable to send auth failure", "error", err)
	}
	_ = conn.Close()
}

func registrationFailure(username string, err error) string {
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return fmt.Sprintf("username '%s' is already taken", username)
	case stderrors.Is(err, errors.ErrInvalidUsername), stderrors.Is(err, errors.ErrInvalidPassword):
		return err.Error()
	default:
		return "registration unavailable, try again later"
	}
}

func welcomeText(username string, others []string) string {
	if len(others) == 0 {
		return fmt.Sprintf("Welcome to the chat, %s! You are the only one online.", username)
	}
	return fmt.Sprintf("Welcome to the chat, %s! Online: %s", username, strings.Join(others, ", "))
}

func (s *RelayServer) messageLoop(session *Session) {
	log := session.log
	for {
		line, err := session.ReceiveLine()
		if err != nil {
			if stderrors.Is(err, errors.ErrLineTooLong) {
				log.Warn("Line too long, discarded")
				session.QueueMessage(protocol.NewError(protocol.ServerName, err.Error()))
				continue
			}
			if session.Alive() && !stderrors.Is(err, io.EOF) && !stderrors.Is(err, net.ErrClosed) {
				log.Warn("Read failed", "error", err)
			}
			return
		}

		msg := protocol.Decode(line)
		switch msg.Kind() {
		case protocol.KindChat:
			s.broadcastChat(session, msg)
		case protocol.KindPrivate:
			s.sendPrivate(session, msg)
		case protocol.KindDisconnect:
			log.Debug("Disconnect requested")
			session.Disconnect()
			return
		case protocol.KindError:
			log.Warn("Malformed message", "reason", msg.Body())
			session.QueueMessage(protocol.NewError(protocol.ServerName, msg.Body()))
		default:
			log.Warn("Unexpected message kind ignored", "kind", msg.Kind())
		}
	}
}

// finish removes the session if it is still the registered one and tells
// everyone else it left.
func (s *RelayServer) finish(session *Session) {
	removed := s.registry.Remove(session)
	session.Disconnect()
	if !removed {
		return
	}
	session.log.Info("User left", "online", s.registry.Count())
	s.notice(fmt.Sprintf("*** %s left the chat ***", session.Username()), session.Username())
}
