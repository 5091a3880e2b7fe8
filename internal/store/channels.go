package store

import (
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/dkeye/Courier/internal/domain"
)

var channelPrefix = []byte("chan:")

func channelKey(id string) []byte {
	return append(append([]byte{}, channelPrefix...), id...)
}

func (s *Store) SaveChannel(ch domain.Channel) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(channelKey(ch.ID), data)
	})
}

// EnsureChannel writes the channel only when its id is not present.
// Used to seed the default "general" channel at startup.
func (s *Store) EnsureChannel(ch domain.Channel) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(channelKey(ch.ID)); err == nil {
			return nil
		}
		return txn.Set(channelKey(ch.ID), data)
	})
}

// Channels returns the whole directory ordered by name.
func (s *Store) Channels() ([]domain.Channel, error) {
	var channels []domain.Channel
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(channelPrefix); it.ValidForPrefix(channelPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var ch domain.Channel
				if err := json.Unmarshal(val, &ch); err != nil {
					return err
				}
				channels = append(channels, ch)
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
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name < channels[j].Name
	})
	return channels, nil
}
