package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"github.com/dkeye/Courier/internal/domain"
)

// messageKey is "msg:{channel}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padded nanosecond timestamp makes lexicographic
//     order chronological within a channel prefix.
//  2. The uuid suffix disambiguates two messages landing on the same
//     nanosecond.
func messageKey(m domain.Message) []byte {
	return fmt.Appendf(nil, "msg:%s:%019d:%s", m.ChannelID, m.CreatedAt.UnixNano(), m.ID)
}

func (s *Store) SaveMessage(m domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(m), data)
	})
}

// Messages returns the most recent `limit` messages of a channel in
// ascending creation order (newest last, the order clients render).
func (s *Store) Messages(channelID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:" + channelID + ":")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key of the prefix, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var m domain.Message
				if err := json.Unmarshal(val, &m); err != nil {
					return err
				}
				messages = append(messages, m)
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
	return lo.Reverse(messages), nil
}
