//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/observability"
	"chat-relay/protocol"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself, the supervisor restarts it on failure
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Recipient is an online user as seen by routing: something messages can be
// queued onto without blocking.
type Recipient interface {
	Username() string
	QueueMessage(msg protocol.Message) bool
	Alive() bool
	Disconnect()
}

type IRegistry interface {
	Add(r Recipient) bool
	Remove(r Recipient) bool
	Get(username string) (Recipient, bool)
	Lookup(usernames ...string) []Recipient
	ForEach(fn func(r Recipient))
	Usernames() []string
	Count() int
	DrainAll() []Recipient
}

// IModerator masks forbidden words and reports which ones it found.
type IModerator interface {
	Censor(text string) (string, []string)
}

type StatsSource interface {
	Stats() observability.ServerStats
}
