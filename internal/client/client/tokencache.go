package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/filex"
	"go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	sessionKey    = []byte("current")
)

// Session is the token pair the CLI holds for the signed-in user.
type Session struct {
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SavedAt      time.Time `json:"saved_at"`
}

// TokenCache persists the current Session in a bbolt file.
type TokenCache struct {
	db *bbolt.DB
}

func OpenTokenCache(path string) (*TokenCache, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open token cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init token cache: %w", err)
	}

	return &TokenCache{db: db}, nil
}

func (c *TokenCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *TokenCache) Save(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Put(sessionKey, data)
	})
}

// Load returns ErrNotSignedIn when nothing is cached.
func (c *TokenCache) Load() (*Session, error) {
	var s *Session
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(sessionKey)
		if data == nil {
			return ErrNotSignedIn
		}
		s = &Session{}
		return json.Unmarshal(data, s)
	})
	if err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// Clear forgets the cached session. Clearing an empty cache is not an error.
func (c *TokenCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(sessionKey)
	})
}
