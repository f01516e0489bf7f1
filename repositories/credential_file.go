package repositories

import (
	"bufio"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileCredentialRepository stores one "username:password" record per line.
// The password part is everything after the first colon.
type FileCredentialRepository struct {
	path string
	log  *slog.Logger
}

func NewFileCredentialRepository(path string, log *slog.Logger) *FileCredentialRepository {
	return &FileCredentialRepository{path: path, log: log}
}

// Load reads every well-formed record. A missing file is an empty table.
func (r *FileCredentialRepository) Load() (map[string]string, error) {
	users := make(map[string]string)

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn("Credential file not found, a new one will be created", "path", r.path)
			return users, nil
		}
		return nil, fmt.Errorf("open credential file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		username, password, ok := strings.Cut(line, ":")
		if !ok || username == "" {
			r.log.Warn("Skipping malformed credential line", "path", r.path, "line", lineNumber)
			continue
		}
		users[username] = password
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	r.log.Info("Credentials loaded", "path", r.path, "users", len(users))
	return users, nil
}

// Save rewrites the file through a temporary sibling and an atomic rename,
// so a crash never leaves a half written table behind. A record that would
// not read back as itself fails the whole save and the file is untouched.
func (r *FileCredentialRepository) Save(users map[string]string) error {
	for username, password := range users {
		if err := checkRecord(username, password); err != nil {
			return err
		}
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	usernames := make([]string, 0, len(users))
	for username := range users {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	w := bufio.NewWriter(tmp)
	for _, username := range usernames {
		if _, err := fmt.Fprintf(w, "%s:%s\n", username, users[username]); err != nil {
			tmp.Close()
			return fmt.Errorf("write credential file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func checkRecord(username, password string) error {
	if username == "" || strings.ContainsAny(username, ":\r\n") {
		return fmt.Errorf("%w: username %q", errors.ErrUnsafeRecord, username)
	}
	if strings.ContainsAny(password, "\r\n") {
		return fmt.Errorf("%w: password of %q contains a line break", errors.ErrUnsafeRecord, username)
	}
	return nil
}
