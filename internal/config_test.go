package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{}, &config)
	req.NoError(err)

	req.Equal(8080, config.Port)
	req.Equal("INFO", config.LogLevel)
	req.Equal(BackendFile, config.CredentialsBackend)
	req.Equal("users.db", config.CredentialsFile)
	req.Equal("plain", config.PasswordHasher)
	req.Equal(30*time.Second, config.HandshakeTimeout)
	req.Equal(time.Second, config.SenderPollInterval)
	req.True(config.Interactive)
	req.Empty(config.Words())
	req.NoError(config.Validate())
}

func TestConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{
		"PORT":                "9090",
		"CREDENTIALS_BACKEND": "badger",
		"CENSORED_WORDS":      " badger, snake,,badger ",
		"HANDSHAKE_TIMEOUT":   "5s",
		"INTERACTIVE":         "false",
	}, &config)
	req.NoError(err)

	req.Equal(9090, config.Port)
	req.Equal(BackendBadger, config.CredentialsBackend)
	req.Equal([]string{"badger", "snake"}, config.Words())
	req.Equal(5*time.Second, config.HandshakeTimeout)
	req.False(config.Interactive)
	req.NoError(config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)
	valid := Config{Port: 8080, CredentialsBackend: BackendFile, CharReplacement: "*"}
	req.NoError(valid.Validate())

	badPort := valid
	badPort.Port = 70000
	req.Error(badPort.Validate())

	badBackend := valid
	badBackend.CredentialsBackend = "postgres"
	req.Error(badBackend.Validate())

	badChar := valid
	badChar.CharReplacement = "**"
	req.Error(badChar.Validate())
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	r, err = CharacterRune("€")
	req.NoError(err)
	req.Equal('€', r)

	_, err = CharacterRune("")
	req.Error(err)
}
