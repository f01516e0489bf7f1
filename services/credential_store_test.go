package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCredentialStore_AddUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockICredentialRepository(ctrl)
	mockRepo.EXPECT().Load().Return(map[string]string{}, nil).Times(1)

	store, err := NewCredentialStore(slog.Default(), mockRepo, auth.PlainHasher{})
	require.NoError(t, err)

	t.Run("should register and persist a new user", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().
			Save(map[string]string{"alice": "pw1234"}).
			Return(nil).
			Times(1)

		req.NoError(store.AddUser("alice", "pw1234"))
		req.True(store.UserExists("alice"))
		req.Equal(1, store.Count())
	})

	t.Run("should reject a duplicate username without persisting", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().Save(gomock.Any()).Times(0)

		err := store.AddUser("alice", "other-password")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
		req.Equal(1, store.Count())
		req.True(store.ValidateUser("alice", "pw1234"))
	})

	t.Run("should reject invalid credentials before touching the repository", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().Save(gomock.Any()).Times(0)

		req.ErrorIs(store.AddUser("al", "pw1234"), errors.ErrInvalidUsername)
		req.ErrorIs(store.AddUser("bo|b", "pw1234"), errors.ErrInvalidUsername)
		req.ErrorIs(store.AddUser("bob", "pw"), errors.ErrInvalidPassword)
		req.Equal(1, store.Count())
	})

	t.Run("should roll back when persistence fails", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().
			Save(gomock.Any()).
			Return(fmt.Errorf("disk full")).
			Times(1)

		err := store.AddUser("bob", "pw5678")
		req.Error(err)
		req.Contains(err.Error(), "disk full")
		req.False(store.UserExists("bob"))
		req.Equal(1, store.Count())
	})
}

func TestCredentialStore_LoadFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockICredentialRepository(ctrl)
	mockRepo.EXPECT().Load().Return(nil, fmt.Errorf("permission denied"))

	store, err := NewCredentialStore(slog.Default(), mockRepo, auth.PlainHasher{})
	req.Error(err)
	req.Nil(store)
}

func TestCredentialStore_ValidateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockICredentialRepository(ctrl)
	mockRepo.EXPECT().Load().Return(map[string]string{"alice": "pw1234"}, nil)

	store, err := NewCredentialStore(slog.Default(), mockRepo, auth.PlainHasher{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"Correct password", "alice", "pw1234", true},
		{"Wrong password", "alice", "pw12345", false},
		{"Case matters", "Alice", "pw1234", false},
		{"Unknown user", "carol", "pw1234", false},
		{"Empty password", "alice", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, store.ValidateUser(tt.username, tt.password))
		})
	}
}

func TestCredentialStore_Argon2_UnreadableHash(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given a table written by the plain hasher but read with argon2
	mockRepo := mocks.NewMockICredentialRepository(ctrl)
	mockRepo.EXPECT().Load().Return(map[string]string{"alice": "pw1234"}, nil)
	hasher := auth.Argon2Hasher{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

	store, err := NewCredentialStore(slog.Default(), mockRepo, hasher)
	req.NoError(err)

	// Then the login is refused rather than crashing
	req.False(store.ValidateUser("alice", "pw1234"))
}

func TestCredentialStore_FileRepository(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	path := filepath.Join(t.TempDir(), "users.db")
	hasher := auth.Argon2Hasher{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

	// Given a store backed by a real file
	store, err := NewCredentialStore(log, repositories.NewFileCredentialRepository(path, log), hasher)
	req.NoError(err)

	// When users register
	req.NoError(store.AddUser("alice", "pw1234"))
	req.NoError(store.AddUser("bob", "pw5678"))
	req.ErrorIs(store.AddUser("alice", "pw1234"), errors.ErrUserAlreadyExists)
	req.Equal(2, store.Count())

	// Then the file never holds the cleartext
	content, err := os.ReadFile(path)
	req.NoError(err)
	req.NotContains(string(content), "pw1234")

	// And a fresh store sees the same users
	reloaded, err := NewCredentialStore(log, repositories.NewFileCredentialRepository(path, log), hasher)
	req.NoError(err)
	req.Equal(2, reloaded.Count())
	req.True(reloaded.ValidateUser("alice", "pw1234"))
	req.True(reloaded.ValidateUser("bob", "pw5678"))
	req.False(reloaded.ValidateUser("bob", "pw1234"))
}

func TestCredentialStore_PasswordCannotForgeRecords(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "users.db")
	newStore := func() *CredentialStore {
		store, err := NewCredentialStore(slog.Default(), repositories.NewFileCredentialRepository(path, slog.Default()), auth.PlainHasher{})
		req.NoError(err)
		return store
	}

	// Given alice registered on a plain text file
	store := newStore()
	req.NoError(store.AddUser("alice", "secret"))

	// When zed registers with a password that embeds a second record
	err := store.AddUser("zed", "pw\nalice:owned")

	// Then the registration is refused
	req.ErrorIs(err, errors.ErrInvalidPassword)
	req.False(store.UserExists("zed"))

	// And after a restart alice still owns her account
	reloaded := newStore()
	req.Equal(1, reloaded.Count())
	req.True(reloaded.ValidateUser("alice", "secret"))
	req.False(reloaded.ValidateUser("alice", "owned"))
}

func TestCredentialStore_ConcurrentRegistration(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "users.db")
	store, err := NewCredentialStore(slog.Default(), repositories.NewFileCredentialRepository(path, slog.Default()), auth.PlainHasher{})
	req.NoError(err)

	// Given many goroutines racing for the same name
	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.AddUser("alice", "pw1234")
		}()
	}
	wg.Wait()
	close(results)

	// Then exactly one wins
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	}
	req.Equal(1, succeeded)
	req.Equal(1, store.Count())
}
