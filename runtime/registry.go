package runtime

import (
	"chat-relay/contract"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry maps each online username to its session. A name maps to at most
// one recipient at a time and the first writer wins. Critical sections only
// touch the map and non-blocking queues, never a socket.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Recipient
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.Recipient)}
}

// Add inserts r unless its username is already taken. The check and the
// insertion are atomic.
func (r *Registry) Add(recipient contract.Recipient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[recipient.Username()]; exists {
		return false
	}
	r.sessions[recipient.Username()] = recipient
	return true
}

// Remove deletes the entry only if it still points at this very recipient,
// so a stale handler never evicts a newer session with the same name.
func (r *Registry) Remove(recipient contract.Recipient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[recipient.Username()]
	if !ok || current != recipient {
		return false
	}
	delete(r.sessions, recipient.Username())
	return true
}

func (r *Registry) Get(username string) (contract.Recipient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recipient, ok := r.sessions[username]
	return recipient, ok
}

// Lookup resolves several names under a single lock. The result has one
// entry per name, nil when that user is offline.
func (r *Registry) Lookup(usernames ...string) []contract.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(usernames, func(username string, _ int) contract.Recipient {
		return r.sessions[username]
	})
}

// ForEach calls fn for every online recipient while holding the read lock.
// fn must not block nor call back into the registry.
func (r *Registry) ForEach(fn func(recipient contract.Recipient)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, recipient := range r.sessions {
		fn(recipient)
	}
}

func (r *Registry) Usernames() []string {
	r.mu.RLock()
	usernames := lo.Keys(r.sessions)
	r.mu.RUnlock()
	sort.Strings(usernames)
	return usernames
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DrainAll empties the registry and hands back everything it held.
func (r *Registry) DrainAll() []contract.Recipient {
	r.mu.Lock()
	defer r.mu.Unlock()
	drained := lo.Values(r.sessions)
	r.sessions = make(map[string]contract.Recipient)
	return drained
}
