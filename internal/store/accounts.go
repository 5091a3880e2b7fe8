package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dkeye/Courier/internal/domain"
)

var ErrAccountExists = errors.New("account already exists")

// Account is the stored record behind an Identity. The password hash
// never leaves this package except through VerifyPassword in auth.
type Account struct {
	ID           domain.UserID `json:"id"`
	Username     string        `json:"username"`
	Avatar       string        `json:"avatar"`
	PasswordHash string        `json:"password_hash"`
	Status       string        `json:"status"`
	LastSeen     time.Time     `json:"last_seen"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (a Account) Identity() domain.Identity {
	return domain.Identity{ID: a.ID, Username: a.Username, Avatar: a.Avatar}
}

func accountKey(username string) []byte {
	return []byte("acct:" + username)
}

func (s *Store) CreateAccount(username, passwordHash string) (Account, error) {
	acct := Account{
		ID:           domain.UserID(uuid.NewString()),
		Username:     username,
		Avatar:       domain.DefaultAvatar,
		PasswordHash: passwordHash,
		Status:       domain.StatusOffline,
		LastSeen:     time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(acct)
	if err != nil {
		return Account{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		key := accountKey(username)
		if _, err := txn.Get(key); err == nil {
			return ErrAccountExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (s *Store) Account(username string) (Account, error) {
	var acct Account
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &acct)
		})
	})
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

// SetStatus updates presence on the account record, best effort. The
// in-memory registry stays authoritative for who is actually online.
func (s *Store) SetStatus(username, status string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := accountKey(username)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var acct Account
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &acct)
		}); err != nil {
			return err
		}
		acct.Status = status
		acct.LastSeen = time.Now().UTC()
		data, err := json.Marshal(acct)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}
