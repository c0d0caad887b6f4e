//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_group_archive.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"

	"feedgram/domain/chat"
)

type IGroupArchive interface {
	Store(message chat.GroupMessage) error
	Recent(limit int) ([]chat.GroupMessage, error)
	Search(ctx context.Context, query string, limit int) ([]chat.GroupMessage, error)
}

// GroupArchive persists the group-chat log on disk. BadgerDB is the record
// of truth, keyed for chronological prefix scans; bluge holds a full-text
// index over the same messages for the search endpoint.
//
// The archive is best effort. The in-memory GroupStore stays authoritative
// for history replies; a write failure here is counted and logged, never
// surfaced to chat participants.
type GroupArchive struct {
	db     *badger.DB
	writer *bluge.Writer
	log    *slog.Logger
}

func NewGroupArchive(db *badger.DB, writer *bluge.Writer, log *slog.Logger) *GroupArchive {
	return &GroupArchive{db: db, writer: writer, log: log}
}

// Store writes the message to badger and indexes it in bluge.
// The key is formatted as "gm:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Keep the message id as a collision disconnector if two messages
//     land on the same nanosecond.
func (a *GroupArchive) Store(message chat.GroupMessage) error {
	key := fmt.Sprintf("gm:%019d:%s", message.Timestamp.UnixNano(), message.ID)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.User.ID).StoreValue()).
		AddField(bluge.NewStoredOnlyField("raw", bytes)).
		AddField(bluge.NewDateTimeField("at", message.Timestamp))
	return a.writer.Update(doc.ID(), doc)
}

// Recent scans the newest messages from badger, returned oldest first like
// the in-memory history window.
func (a *GroupArchive) Recent(limit int) ([]chat.GroupMessage, error) {
	var raw [][]byte
	err := a.db.View(func(txn *badger.Txn) error {
		prefix := []byte("gm:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]chat.GroupMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg chat.GroupMessage
		if err := json.Unmarshal(raw[i], &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Search runs a full-text match over archived message text, newest scores
// first. Hits are rebuilt from the stored raw document, not from badger,
// so a search never takes the badger read path.
func (a *GroupArchive) Search(ctx context.Context, query string, limit int) ([]chat.GroupMessage, error) {
	reader, err := a.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			a.log.Warn("closing search reader", "error", err)
		}
	}()

	match := bluge.NewMatchQuery(query).SetField("text")
	request := bluge.NewTopNSearch(limit, match)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var messages []chat.GroupMessage
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}

		var raw []byte
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "raw" {
				raw = append([]byte{}, value...)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}

		var msg chat.GroupMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Close flushes the bluge writer. Badger is owned by the caller.
func (a *GroupArchive) Close() error {
	return a.writer.Close()
}
