package repositories

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const credentialPrefix = "cred:"

// BadgerCredentialRepository keeps one key per user, "cred:{username}",
// whose value is the stored password.
type BadgerCredentialRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerCredentialRepository(db *badger.DB, log *slog.Logger) *BadgerCredentialRepository {
	return &BadgerCredentialRepository{db: db, log: log}
}

func (r *BadgerCredentialRepository) Load() (map[string]string, error) {
	users := make(map[string]string)
	prefix := []byte(credentialPrefix)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			username := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				users[username] = string(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	r.log.Info("Credentials loaded", "backend", "badger", "users", len(users))
	return users, nil
}

// Save writes every record and deletes the ones no longer present, in a
// single transaction.
func (r *BadgerCredentialRepository) Save(users map[string]string) error {
	prefix := []byte(credentialPrefix)

	err := r.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, ok := users[string(bytes.TrimPrefix(key, prefix))]; !ok {
				stale = append(stale, key)
			}
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		for username, password := range users {
			if err := txn.Set([]byte(credentialPrefix+username), []byte(password)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
