// Package state persists sync bookkeeping between runs in a bbolt file.
//
// Only the sync orchestrator writes state. The stored watermark gates which
// records the next run fetches; an empty watermark means a full sync.
package state

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
)

var bucket = []byte("sync")

// Keys inside the sync bucket.
var (
	keyAccountID   = []byte("account_id")
	keyRecordCount = []byte("record_count")
	keyWatermark   = []byte("watermark")
	keyLastRun     = []byte("last_run")
)

// State is the persisted sync bookkeeping.
type State struct {
	AccountID   int       `yaml:"account_id" json:"account_id"`
	RecordCount int       `yaml:"record_count" json:"record_count"`
	Watermark   string    `yaml:"watermark" json:"watermark"`
	LastRun     time.Time `yaml:"last_run" json:"last_run"`
}

// Store reads and writes State.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the state database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.NewValidationError("state_path", path, "state path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("mkdir", filepath.Dir(path), err)
	}
	db, err := bolt.Open(path, constants.SecureFilePermissions, &bolt.Options{Timeout: constants.StateLockTimeout})
	if err != nil {
		return nil, errors.WrapResource("open", "state", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// DefaultPath returns the state file location inside vault.
func DefaultPath(vault string) string {
	return filepath.Join(vault, constants.StateDir, constants.StateFile)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// Load returns the stored state. A fresh database yields the zero State.
func (s *Store) Load() (State, error) {
	var st State
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var err error
		if st.AccountID, err = getInt(b, keyAccountID); err != nil {
			return err
		}
		if st.RecordCount, err = getInt(b, keyRecordCount); err != nil {
			return err
		}
		st.Watermark = string(b.Get(keyWatermark))
		if raw := b.Get(keyLastRun); len(raw) > 0 {
			if st.LastRun, err = time.Parse(time.RFC3339Nano, string(raw)); err != nil {
				return errors.WrapParse("time", string(keyLastRun), err)
			}
		}
		return nil
	})
	if err != nil {
		return State{}, errors.WrapResource("load", "state", s.path, err)
	}
	return st, nil
}

// Save replaces the stored state.
func (s *Store) Save(st State) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		if err := b.Put(keyAccountID, []byte(strconv.Itoa(st.AccountID))); err != nil {
			return err
		}
		if err := b.Put(keyRecordCount, []byte(strconv.Itoa(st.RecordCount))); err != nil {
			return err
		}
		if err := b.Put(keyWatermark, []byte(st.Watermark)); err != nil {
			return err
		}
		lastRun := ""
		if !st.LastRun.IsZero() {
			lastRun = st.LastRun.UTC().Format(time.RFC3339Nano)
		}
		return b.Put(keyLastRun, []byte(lastRun))
	})
	if err != nil {
		return errors.WrapResource("save", "state", s.path, err)
	}
	return nil
}

// Reset clears the watermark and the cached account id so the next sync
// starts from scratch.
func (s *Store) Reset() error {
	st, err := s.Load()
	if err != nil {
		return err
	}
	st.Watermark = ""
	st.AccountID = 0
	return s.Save(st)
}

func getInt(b *bolt.Bucket, key []byte) (int, error) {
	raw := b.Get(key)
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, errors.WrapParse("int", string(key), err)
	}
	return n, nil
}
