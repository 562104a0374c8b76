package sealed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwhite/smartlife/storage"
	"github.com/kwhite/smartlife/storage/memory"
)

func TestStore_RoundTrip(t *testing.T) {
	inner := memory.NewStore()
	s, err := NewStore(inner, "correct horse")
	require.NoError(t, err)

	require.NoError(t, s.Set("access_token", []byte("tok")))

	value, err := s.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), value)

	// The inner store must never see the plaintext.
	raw, err := inner.Get("access_token")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("tok"), raw)
}

func TestStore_WrongPassphrase(t *testing.T) {
	inner := memory.NewStore()
	s, err := NewStore(inner, "correct horse")
	require.NoError(t, err)
	require.NoError(t, s.Set("refresh_token", []byte("ref")))

	reopened, err := NewStore(inner, "battery staple")
	require.NoError(t, err)

	_, err = reopened.Get("refresh_token")
	require.ErrorIs(t, err, ErrBadPassphrase)
}

func TestStore_SaltPersistsAcrossReopen(t *testing.T) {
	inner := memory.NewStore()
	s, err := NewStore(inner, "pass")
	require.NoError(t, err)
	require.NoError(t, s.Set("region", []byte("eu")))

	reopened, err := NewStore(inner, "pass")
	require.NoError(t, err)

	value, err := reopened.Get("region")
	require.NoError(t, err)
	assert.Equal(t, []byte("eu"), value)
}

func TestStore_Batch(t *testing.T) {
	inner := memory.NewStore()
	s, err := NewStore(inner, "pass")
	require.NoError(t, err)
	require.NoError(t, s.Set("old", []byte("1")))

	err = s.Batch(func(tx storage.BatchTx) error {
		if err := tx.Set("device_list", []byte(`[]`)); err != nil {
			return err
		}
		return tx.Delete("old")
	})
	require.NoError(t, err)

	value, err := s.Get("device_list")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
	_, err = s.Get("old")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_MissingKey(t *testing.T) {
	s, err := NewStore(memory.NewStore(), "pass")
	require.NoError(t, err)
	_, err = s.Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
