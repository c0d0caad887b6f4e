package sink

import (
	"context"
	"log/slog"

	"feedgram/domain/event"
	"feedgram/repositories"
)

// ArchiveErrors is the monitoring hook the archive sink reports into.
type ArchiveErrors interface {
	IncrArchiveError()
}

// Archive forwards group messages to the on-disk archive. Failures are
// swallowed after counting: the archive is best effort and must never
// fail a broadcast.
type Archive struct {
	repository repositories.IGroupArchive
	monitoring ArchiveErrors
	log        *slog.Logger
}

func NewArchive(repository repositories.IGroupArchive, monitoring ArchiveErrors, log *slog.Logger) Archive {
	return Archive{repository: repository, monitoring: monitoring, log: log}
}

func (a Archive) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.NewGroupMessage:
		if err := a.repository.Store(evt.GroupMessage); err != nil {
			a.monitoring.IncrArchiveError()
			a.log.Warn("archiving group message", "message_id", evt.GroupMessage.ID, "error", err)
		}
		return nil
	default:
		return nil
	}
}
