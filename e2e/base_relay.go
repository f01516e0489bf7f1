package e2e

import (
	"chat-relay/auth"
	"chat-relay/client"
	"chat-relay/protocol"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseRelaySuite struct {
	suite.Suite
	Config  Config
	timeout time.Duration
	server  *runtime.RelayServer
	log     *slog.Logger

	mu      sync.Mutex
	clients []*client.Client
}

// SetupSuite loads the environment configuration and, without RELAY_ADDR,
// starts a relay in process.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.timeout, err = time.ParseDuration(s.Config.Timeout)
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromLevel(slog.LevelWarn)

	if s.Config.RelayAddr != "" {
		return
	}
	repository := repositories.NewFileCredentialRepository(filepath.Join(s.T().TempDir(), "users.db"), s.log)
	store, err := services.NewCredentialStore(s.log, repository, auth.PlainHasher{})
	s.Require().NoError(err)
	s.server = runtime.NewRelayServer(s.log, runtime.ServerConfig{
		Host:               "127.0.0.1",
		HandshakeTimeout:   s.timeout,
		WriteTimeout:       s.timeout,
		SenderPollInterval: 50 * time.Millisecond,
	}, store, nil)
	s.Require().NoError(s.server.Start())
	s.Config.RelayAddr = s.server.Addr().String()
}

func (s *BaseRelaySuite) TearDownSuite() {
	s.mu.Lock()
	for _, c := range s.clients {
		_ = c.Close()
	}
	s.clients = nil
	s.mu.Unlock()

	if s.server != nil {
		s.server.Stop()
	}
}

// UniqueName returns a valid username that no earlier run registered.
func (s *BaseRelaySuite) UniqueName(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Step prints a colorized header for a scenario step.
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Connect opens a client that stays open across s.Run steps and is closed
// when the suite ends.
func (s *BaseRelaySuite) Connect() *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	c, err := client.Dial(ctx, s.Config.RelayAddr, s.log)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	s.mu.Lock()
	s.clients = append(s.clients, c)
	s.mu.Unlock()
	return c
}

// Await reads until a message matching accept arrives.
func (s *BaseRelaySuite) Await(c *client.Client, accept func(protocol.Message) bool) protocol.Message {
	for {
		msg, err := c.ReceiveTimeout(s.timeout)
		s.Require().NoError(err)
		s.T().Logf("%s <- %s", c.Username(), protocol.Format(msg, time.Now()))
		if accept(msg) {
			return msg
		}
	}
}

func OfKind(kind protocol.Kind) func(protocol.Message) bool {
	return func(m protocol.Message) bool { return m.Kind() == kind }
}

func NoticeContaining(text string) func(protocol.Message) bool {
	return func(m protocol.Message) bool {
		return m.Kind() == protocol.KindServerNotice && strings.Contains(m.Body(), text)
	}
}
