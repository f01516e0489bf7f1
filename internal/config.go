package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

type Config struct {
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT,default=8080"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	CredentialsBackend string        `env:"CREDENTIALS_BACKEND,default=file"`
	CredentialsFile    string        `env:"CREDENTIALS_FILE,default=users.db"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,default=./data/credentials"`
	PasswordHasher     string        `env:"PASSWORD_HASHER,default=plain"`
	CensoredWords      string        `env:"CENSORED_WORDS"`
	CharReplacement    string        `env:"CHARACTER_REPLACEMENT,default=*"`
	HandshakeTimeout   time.Duration `env:"HANDSHAKE_TIMEOUT,default=30s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	SenderPollInterval time.Duration `env:"SENDER_POLL_INTERVAL,default=1s"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=1m"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=1s"`
	Interactive        bool          `env:"INTERACTIVE,default=true"`
}

// Validate reports settings go-env cannot check on its own.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 0 and 65535, got %d", c.Port)
	}
	if c.CredentialsBackend != BackendFile && c.CredentialsBackend != BackendBadger {
		return fmt.Errorf("CREDENTIALS_BACKEND must be %q or %q, got %q", BackendFile, BackendBadger, c.CredentialsBackend)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

// Words splits CENSORED_WORDS on commas, dropping blanks and duplicates.
func (c Config) Words() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Uniq(lo.Compact(words))
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
