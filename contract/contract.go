//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"feedgram/domain/chat"
	"feedgram/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
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

// EventSink receives one outbound event per delivery, in broadcast order.
// A websocket session is a sink; so are the permanent projections
// (timeline, archive).
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the room membership manager: identity to session-set
// mapping plus room addressing. Room names are explicit, never built by
// string concatenation at call sites.
type IRegistry interface {
	Connect(sessionID, userID string, sink EventSink) error
	Disconnect(sessionID string)
	SinksForRoom(room string) []EventSink
	SinksForUser(userID string) []EventSink
	AllSinks() []EventSink
	OnlineIDs() []string
}

// IDispatcher validates inbound commands, mutates the stores, and computes
// the target rooms for outbound broadcast.
type IDispatcher interface {
	Dispatch(cmd chat.Command)
}
