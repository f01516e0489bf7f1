package runtime

import (
	"chat-relay/contract"
	"chat-relay/protocol"
	"fmt"
)

// broadcastChat fans a chat message out to every online user but its sender.
// The sender field always comes from the session, never from the wire.
func (s *RelayServer) broadcastChat(from *Session, msg protocol.Message) {
	out := protocol.NewChat(from.Username(), s.censor(from, msg.Body()))
	s.counters.IncrMessages()

	delivered := 0
	s.registry.ForEach(func(r contract.Recipient) {
		if r.Username() == from.Username() {
			return
		}
		if r.QueueMessage(out) {
			delivered++
		}
	})
	from.log.Debug("Broadcast routed", "recipients", delivered)
}

// sendPrivate delivers to the target and echoes to the sender, once when
// they are the same user. An offline target earns the sender an error.
func (s *RelayServer) sendPrivate(from *Session, msg protocol.Message) {
	target := msg.Target()
	if target == "" {
		from.QueueMessage(protocol.NewError(protocol.ServerName, "private message without a target"))
		return
	}

	recipients := s.registry.Lookup(target, from.Username())
	to, sender := recipients[0], recipients[1]
	if to == nil {
		from.log.Debug("Private message to offline user", "target", target)
		from.QueueMessage(protocol.NewError(protocol.ServerName, fmt.Sprintf("user '%s' is not online", target)))
		return
	}

	out := protocol.NewPrivate(from.Username(), target, s.censor(from, msg.Body()))
	s.counters.IncrMessages()
	to.QueueMessage(out)
	if sender != nil && sender != to {
		sender.QueueMessage(out)
	}
}

// notice sends a server notice to everyone online except one user.
func (s *RelayServer) notice(text, except string) {
	out := protocol.NewServerNotice(text)
	s.registry.ForEach(func(r contract.Recipient) {
		if r.Username() != except {
			r.QueueMessage(out)
		}
	})
}

func (s *RelayServer) censor(from *Session, body string) string {
	if s.moderator == nil {
		return body
	}
	censored, words := s.moderator.Censor(body)
	if len(words) > 0 {
		from.log.Info("Message censored", "words", words)
	}
	return censored
}
