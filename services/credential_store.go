//go:generate go run go.uber.org/mock/mockgen -source=credential_store.go -destination=../mocks/mock_credential_store.go -package=mocks
package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"log/slog"
	"sync"
)

type ICredentialStore interface {
	AddUser(username, password string) error
	ValidateUser(username, password string) bool
	UserExists(username string) bool
	Count() int
}

// CredentialStore is the single source of truth for authentication. Every
// successful mutation is persisted before the lock is released.
type CredentialStore struct {
	log        *slog.Logger
	repository repositories.ICredentialRepository
	hasher     auth.PasswordHasher

	mu    sync.Mutex
	users map[string]string
}

// NewCredentialStore loads the whole table from the repository once.
func NewCredentialStore(log *slog.Logger, repository repositories.ICredentialRepository, hasher auth.PasswordHasher) (*CredentialStore, error) {
	users, err := repository.Load()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if users == nil {
		users = make(map[string]string)
	}
	return &CredentialStore{
		log:        log,
		repository: repository,
		hasher:     hasher,
		users:      users,
	}, nil
}

func (s *CredentialStore) AddUser(username, password string) error {
	// Cheap rule checks and the expensive hash happen outside the lock
	if err := auth.ValidateCredentials(username, password); err != nil {
		return err
	}
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return errors.ErrUserAlreadyExists
	}
	s.users[username] = stored
	if err := s.repository.Save(s.users); err != nil {
		delete(s.users, username)
		s.log.Error("Unable to persist credentials", "username", username, "error", err)
		return fmt.Errorf("persist credentials: %w", err)
	}

	s.log.Info("User registered", "username", username, "users", len(s.users))
	return nil
}

func (s *CredentialStore) ValidateUser(username, password string) bool {
	s.mu.Lock()
	stored, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return false
	}

	match, err := s.hasher.Compare(password, stored)
	if err != nil {
		s.log.Warn("Stored credential cannot be compared", "username", username, "error", err)
		return false
	}
	return match
}

func (s *CredentialStore) UserExists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

func (s *CredentialStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
