// Package protocol defines the messages exchanged between relay clients and
// the relay server, and their line-oriented wire encoding.
//
// Every message is encoded on a single line as
//
//	kind|sender|password|target|body
//
// Fields never contain a raw delimiter or line terminator: they are escaped
// by Encode and restored by Decode. All string fields are bounded; longer
// input is silently truncated when the message is built.
package protocol

import (
	"fmt"
	"unicode/utf8"
)

// ServerName is the sender used for every message produced by the server.
const ServerName = "SERVER"

// Maximum field sizes, in bytes.
const (
	MaxUsernameLength = 32
	MaxPasswordLength = 64
	MaxBodyLength     = 512
)

type Kind uint8

const (
	KindLoginRequest Kind = iota + 1
	KindRegisterRequest
	KindAuthSuccess
	KindAuthFailure
	KindChat
	KindPrivate
	KindDisconnect
	KindServerNotice
	KindError
)

var kindNames = map[Kind]string{
	KindLoginRequest:    "LOGIN_REQUEST",
	KindRegisterRequest: "REGISTER_REQUEST",
	KindAuthSuccess:     "AUTH_SUCCESS",
	KindAuthFailure:     "AUTH_FAILURE",
	KindChat:            "CHAT",
	KindPrivate:         "PRIVATE",
	KindDisconnect:      "DISCONNECT",
	KindServerNotice:    "SERVER_NOTICE",
	KindError:           "ERROR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// Valid reports whether k is one of the kinds known to this protocol version.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsAuthRequest reports whether k opens a session (login or register).
func (k Kind) IsAuthRequest() bool {
	return k == KindLoginRequest || k == KindRegisterRequest
}

// Message is an immutable protocol record. Build it with one of the New*
// constructors or with Decode; the zero value is not a valid message.
type Message struct {
	kind     Kind
	sender   string
	password string
	target   string
	body     string
}

func newMessage(kind Kind, sender, password, target, body string) Message {
	return Message{
		kind:     kind,
		sender:   Truncate(sender, MaxUsernameLength),
		password: Truncate(password, MaxPasswordLength),
		target:   Truncate(target, MaxUsernameLength),
		body:     Truncate(body, MaxBodyLength),
	}
}

func (m Message) Kind() Kind         { return m.kind }
func (m Message) Sender() string     { return m.sender }
func (m Message) Password() string   { return m.password }
func (m Message) Target() string     { return m.target }
func (m Message) Body() string       { return m.body }
func (m Message) String() string     { return fmt.Sprintf("%s from=%q to=%q", m.kind, m.sender, m.target) }
func (m Message) IsError() bool      { return m.kind == KindError }
func (m Message) IsFromServer() bool { return m.sender == ServerName }

// WithBody returns a copy of m carrying a different body.
func (m Message) WithBody(body string) Message {
	return newMessage(m.kind, m.sender, m.password, m.target, body)
}

func NewLogin(username, password string) Message {
	return newMessage(KindLoginRequest, username, password, "", "")
}

func NewRegister(username, password string) Message {
	return newMessage(KindRegisterRequest, username, password, "", "")
}

func NewAuthSuccess(reason string) Message {
	return newMessage(KindAuthSuccess, ServerName, "", "", reason)
}

func NewAuthFailure(reason string) Message {
	return newMessage(KindAuthFailure, ServerName, "", "", reason)
}

func NewChat(sender, body string) Message {
	return newMessage(KindChat, sender, "", "", body)
}

func NewPrivate(sender, target, body string) Message {
	return newMessage(KindPrivate, sender, "", target, body)
}

func NewDisconnect(sender string) Message {
	return newMessage(KindDisconnect, sender, "", "", "")
}

func NewServerNotice(body string) Message {
	return newMessage(KindServerNotice, ServerName, "", "", body)
}

func NewError(sender, reason string) Message {
	return newMessage(KindError, sender, "", "", reason)
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
