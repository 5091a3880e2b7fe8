package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Courier/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestAccounts_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	acct, err := st.CreateAccount("alice", "$argon2id$fake")
	req.NoError(err)
	req.NotEmpty(acct.ID)
	req.Equal(domain.StatusOffline, acct.Status)

	fetched, err := st.Account("alice")
	req.NoError(err)
	req.Equal(acct.ID, fetched.ID)
	req.Equal("$argon2id$fake", fetched.PasswordHash)

	_, err = st.Account("nobody")
	req.ErrorIs(err, ErrNotFound)
}

func TestAccounts_DuplicateUsername(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	_, err := st.CreateAccount("alice", "h1")
	req.NoError(err)
	_, err = st.CreateAccount("alice", "h2")
	req.ErrorIs(err, ErrAccountExists)
}

func TestAccounts_SetStatus(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	_, err := st.CreateAccount("alice", "h")
	req.NoError(err)

	req.NoError(st.SetStatus("alice", domain.StatusOnline))
	acct, err := st.Account("alice")
	req.NoError(err)
	req.Equal(domain.StatusOnline, acct.Status)

	req.ErrorIs(st.SetStatus("nobody", domain.StatusOnline), ErrNotFound)
}

func TestMessages_AscendingOrderRegardlessOfInsertOrder(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	at := time.Now().UTC()

	// Inserted newest first; reads must still come back oldest first.
	for i := 3; i >= 1; i-- {
		req.NoError(st.SaveMessage(domain.Message{
			ID:        uuid.NewString(),
			UserID:    "u1",
			ChannelID: "general",
			Body:      fmt.Sprintf("message %d", i),
			Kind:      domain.MessageText,
			Username:  "alice",
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := st.Messages("general", 10)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("message 1", messages[0].Body)
	req.Equal("message 3", messages[2].Body)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestMessages_LimitKeepsNewest(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	at := time.Now().UTC()

	for i := 1; i <= 5; i++ {
		req.NoError(st.SaveMessage(domain.Message{
			ID:        uuid.NewString(),
			UserID:    "u1",
			ChannelID: "general",
			Body:      fmt.Sprintf("message %d", i),
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := st.Messages("general", 2)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("message 4", messages[0].Body)
	req.Equal("message 5", messages[1].Body)
}

func TestMessages_ScopedToChannel(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)
	at := time.Now().UTC()

	req.NoError(st.SaveMessage(domain.Message{ID: uuid.NewString(), ChannelID: "general", Body: "a", CreatedAt: at}))
	req.NoError(st.SaveMessage(domain.Message{ID: uuid.NewString(), ChannelID: "random", Body: "b", CreatedAt: at}))

	messages, err := st.Messages("general", 10)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("a", messages[0].Body)
}

func TestChannels_SortedByName(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	req.NoError(st.SaveChannel(domain.NewChannel("zulu", domain.ChannelText, "u1")))
	req.NoError(st.SaveChannel(domain.NewChannel("alpha", domain.ChannelVoice, "u1")))

	channels, err := st.Channels()
	req.NoError(err)
	req.Len(channels, 2)
	req.Equal("alpha", channels[0].Name)
	req.Equal("zulu", channels[1].Name)
}

func TestChannels_EnsureChannelIsIdempotent(t *testing.T) {
	req := require.New(t)
	st := openTestStore(t)

	general := domain.Channel{ID: "general", Name: "general", Kind: domain.ChannelText, CreatedAt: time.Now().UTC()}
	req.NoError(st.EnsureChannel(general))

	renamed := general
	renamed.Name = "hijacked"
	req.NoError(st.EnsureChannel(renamed))

	channels, err := st.Channels()
	req.NoError(err)
	req.Len(channels, 1)
	req.Equal("general", channels[0].Name)
}
