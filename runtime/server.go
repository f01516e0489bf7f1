package runtime

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/services"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type ServerConfig struct {
	Host string
	Port int
	// HandshakeTimeout bounds the wait for the login or register line.
	HandshakeTimeout   time.Duration
	WriteTimeout       time.Duration
	SenderPollInterval time.Duration
}

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RelayServer accepts connections, authenticates them against the credential
// store and routes chat traffic between online sessions. Handler goroutines
// are not tracked: Stop closes the listener and every session socket, which
// is enough for each handler to notice and return on its own.
type RelayServer struct {
	log       *slog.Logger
	cfg       ServerConfig
	store     services.ICredentialStore
	moderator contract.IModerator
	registry  *Registry
	counters  observability.Counters

	state atomic.Int32
	// lifecycle serializes Start and Stop
	lifecycle  sync.Mutex
	listener   net.Listener
	acceptDone chan struct{}
	startedAt  atomic.Pointer[time.Time]

	pendingMu sync.Mutex
	pending   map[net.Conn]struct{}
}

// NewRelayServer builds a stopped server. moderator may be nil.
func NewRelayServer(log *slog.Logger, cfg ServerConfig, store services.ICredentialStore, moderator contract.IModerator) *RelayServer {
	return &RelayServer{
		log:       log,
		cfg:       cfg,
		store:     store,
		moderator: moderator,
		registry:  NewRegistry(),
		pending:   make(map[net.Conn]struct{}),
	}
}

func (s *RelayServer) State() State {
	return State(s.state.Load())
}

// Start binds the listening socket and launches the accept loop. It fails
// with errors.ErrServerRunning unless the server is stopped. A bind failure
// leaves the server stopped.
func (s *RelayServer) Start() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return errors.ErrServerRunning
	}

	address := s.cfg.Address()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		s.state.Store(int32(StateStopped))
		s.log.Error("Unable to start relay server", "address", address, "error", err)
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	now := time.Now().UTC()
	s.startedAt.Store(&now)
	s.listener = listener
	s.acceptDone = make(chan struct{})
	s.state.Store(int32(StateRunning))

	go s.acceptLoop(listener, s.acceptDone)

	s.log.Info("Relay server started", "address", listener.Addr().String())
	return nil
}

// Stop is idempotent. It returns once the accept loop has exited and every
// online session is disconnected.
func (s *RelayServer) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	s.log.Info("Stopping relay server")

	if err := s.listener.Close(); err != nil {
		s.log.Warn("Closing listener", "error", err)
	}
	<-s.acceptDone

	s.closePending()

	sessions := s.registry.DrainAll()
	for _, session := range sessions {
		session.Disconnect()
	}

	s.listener = nil
	s.state.Store(int32(StateStopped))
	s.log.Info("Relay server stopped", "disconnected", len(sessions))
}

// Addr is the bound address while running, nil otherwise.
func (s *RelayServer) Addr() net.Addr {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *RelayServer) OnlineCount() int {
	return s.registry.Count()
}

func (s *RelayServer) Usernames() []string {
	return s.registry.Usernames()
}

// Kick disconnects an online user. Its handler then removes it from the
// registry and tells the others it left.
func (s *RelayServer) Kick(username string) bool {
	recipient, ok := s.registry.Get(username)
	if !ok {
		return false
	}
	s.log.Info("Kicking user", "username", username)
	recipient.Disconnect()
	return true
}

func (s *RelayServer) Stats() observability.ServerStats {
	stats := observability.ServerStats{
		TotalConnections: s.counters.Connections(),
		TotalMessages:    s.counters.Messages(),
		FailedLogins:     s.counters.FailedLogins(),
		Online:           s.registry.Count(),
		RegisteredUsers:  s.store.Count(),
	}
	if startedAt := s.startedAt.Load(); startedAt != nil {
		stats.StartedAt = *startedAt
	}
	return stats
}

func (s *RelayServer) acceptLoop(listener net.Listener, done chan struct{}) {
	defer close(done)

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.State() != StateRunning || stderrors.Is(err, net.ErrClosed) {
				s.log.Debug("Accept loop stopped")
				return
			}
			backoff = nextBackoff(backoff)
			s.log.Warn("Accept failed, retrying", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.counters.IncrConnections()
		go s.handle(conn)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return minAcceptBackoff
	}
	return min(current*2, maxAcceptBackoff)
}

// trackPending registers a connection that has no session yet so Stop can
// close it. It refuses once the server is no longer running.
func (s *RelayServer) trackPending(conn net.Conn) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.State() != StateRunning {
		return false
	}
	s.pending[conn] = struct{}{}
	return true
}

func (s *RelayServer) untrackPending(conn net.Conn) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, conn)
}

func (s *RelayServer) closePending() {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	for conn := range s.pending {
		_ = conn.Close()
		delete(s.pending, conn)
	}
}
