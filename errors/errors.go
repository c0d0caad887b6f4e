package errors

import "fmt"

// Validation failures on inbound realtime events. The wire protocol has no
// per-event acknowledgment, so the dispatcher handles these locally: the
// event is dropped and logged, never propagated to other clients. The REST
// surface maps them to status codes instead.
var (
	ErrIdentityMissing       = fmt.Errorf("identity missing")
	ErrUnknownConversation   = fmt.Errorf("unknown conversation")
	ErrUnknownAuthor         = fmt.Errorf("unknown author")
	ErrNotParticipant        = fmt.Errorf("sender is not a participant")
	ErrEmptyMessage          = fmt.Errorf("empty message")
	ErrDuplicateConversation = fmt.Errorf("conversation already exists for pair")
)

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
	ErrSessionClosed = fmt.Errorf("session closed")
	ErrBufferFull    = fmt.Errorf("session buffer full")
	ErrNotConnected  = fmt.Errorf("client not connected")
)
