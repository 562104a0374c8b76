// Package sealed wraps a storage.Store with at-rest encryption. Values are
// sealed with AES-256-GCM under a key derived from a passphrase via Argon2id;
// keys stay in the clear so the underlying store remains inspectable.
package sealed

import (
	"errors"
	"fmt"

	"github.com/kwhite/smartlife/internal/util"
	"github.com/kwhite/smartlife/storage"
)

// saltKey is the one key whose value is stored unsealed: the derivation salt
// itself.
const saltKey = "seal_salt"

const saltSize = 16

// ErrBadPassphrase is returned when a sealed value cannot be opened with the
// derived key.
var ErrBadPassphrase = errors.New("sealed store: wrong passphrase or corrupt value")

// Store encrypts values before handing them to an inner storage.Store.
type Store struct {
	inner storage.Store
	key   []byte
}

var _ storage.Store = (*Store)(nil)

// NewStore derives the sealing key from the passphrase and the salt persisted
// in the inner store, creating a fresh salt on first use.
func NewStore(inner storage.Store, passphrase string) (*Store, error) {
	salt, err := inner.Get(saltKey)
	if errors.Is(err, storage.ErrNotFound) {
		salt, err = util.RandomBytes(saltSize)
		if err != nil {
			return nil, err
		}
		if err := inner.Set(saltKey, salt); err != nil {
			return nil, fmt.Errorf("persisting seal salt: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return &Store{
		inner: inner,
		key:   util.DeriveKey(passphrase, salt, util.DefaultArgon2idParams()),
	}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	sealed, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	value, err := util.Decrypt(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, ErrBadPassphrase)
	}
	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	sealed, err := util.Encrypt(value, s.key)
	if err != nil {
		return err
	}
	return s.inner.Set(key, sealed)
}

func (s *Store) Delete(key string) error {
	return s.inner.Delete(key)
}

// Batch seals values as they are written within the inner store's batch.
func (s *Store) Batch(fn func(tx storage.BatchTx) error) error {
	return s.inner.Batch(func(inner storage.BatchTx) error {
		return fn(&sealedBatchTx{inner: inner, key: s.key})
	})
}

type sealedBatchTx struct {
	inner storage.BatchTx
	key   []byte
}

func (tx *sealedBatchTx) Set(key string, value []byte) error {
	sealed, err := util.Encrypt(value, tx.key)
	if err != nil {
		return err
	}
	return tx.inner.Set(key, sealed)
}

func (tx *sealedBatchTx) Delete(key string) error {
	return tx.inner.Delete(key)
}
