package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	at := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	tests := []struct {
		msg  Message
		want string
	}{
		{NewChat("alice", "hello"), "[14:05:09] alice: hello"},
		{NewPrivate("alice", "bob", "psst"), "[14:05:09] (private) alice -> bob: psst"},
		{NewServerNotice("*** bob joined the chat ***"), "[14:05:09] *** bob joined the chat ***"},
		{NewError(ServerName, "user 'carol' is not online"), "[14:05:09] error: user 'carol' is not online"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Format(tt.msg, at))
	}
}
