package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	delimiter  = '|'
	escapeChar = '\\'
	fieldCount = 5
)

// MaxLineLength bounds an encoded line (terminator excluded). Every escaped
// field can at most double in size.
const MaxLineLength = 2*(2*MaxUsernameLength+MaxPasswordLength+MaxBodyLength) + 3 + fieldCount

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\p`,
	"\n", `\n`,
	"\r", `\r`,
)

// Encode renders m as a single line, without the trailing newline.
func Encode(m Message) string {
	var b strings.Builder
	b.Grow(len(m.sender) + len(m.password) + len(m.target) + len(m.body) + 8)
	b.WriteString(strconv.Itoa(int(m.kind)))
	for _, field := range []string{m.sender, m.password, m.target, m.body} {
		b.WriteByte(delimiter)
		b.WriteString(escaper.Replace(field))
	}
	return b.String()
}

// Decode parses a line produced by Encode. It never fails: malformed input
// yields a KindError message describing what was wrong, since lines come
// from an untrusted peer.
func Decode(line string) Message {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, string(delimiter))
	if len(parts) != fieldCount {
		return NewError(ServerName, fmt.Sprintf("malformed message: expected %d fields, got %d", fieldCount, len(parts)))
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 || n > 255 || !Kind(n).Valid() {
		return NewError(ServerName, fmt.Sprintf("malformed message: unknown kind %q", parts[0]))
	}

	fields := make([]string, 0, fieldCount-1)
	for _, raw := range parts[1:] {
		field, err := unescape(raw)
		if err != nil {
			return NewError(ServerName, "malformed message: "+err.Error())
		}
		fields = append(fields, field)
	}
	return newMessage(Kind(n), fields[0], fields[1], fields[2], fields[3])
}

func unescape(s string) (string, error) {
	if strings.IndexByte(s, escapeChar) < 0 {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != escapeChar {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("dangling escape at end of field")
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'p':
			b.WriteByte(delimiter)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", s[i])
		}
	}
	return b.String(), nil
}
