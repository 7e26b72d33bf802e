package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

// Bucket names. Sub-records are keyed "gameID/recordID" so one prefix
// scan enumerates a game's records and cascade deletion stays cheap.
const (
	gameBucket    = "games"
	stateBucket   = "savestates"
	cheatBucket   = "cheats"
	runtimeBucket = "runtime_configs"
)

// Store provides a BoltDB-backed record store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{gameBucket, stateBucket, cheatBucket, runtimeBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// subKey builds the composite key for records owned by a game.
func subKey(gameID, recordID string) []byte {
	return []byte(gameID + "/" + recordID)
}

// subPrefix is the scan prefix covering all records owned by a game.
func subPrefix(gameID string) []byte {
	return []byte(gameID + "/")
}

func (s *Store) put(bucket, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", bucket, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), payload)
	})
}

func (s *Store) get(bucket, key string, v any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if payload == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return fmt.Errorf("unmarshal %s record: %w", bucket, err)
		}
		return nil
	})
}

// PutGame persists a game record.
func (s *Store) PutGame(g GameRecord) error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	return s.put(gameBucket, g.ID, g)
}

// GetGame fetches a game record by ID.
func (s *Store) GetGame(id string) (GameRecord, error) {
	var g GameRecord
	if err := s.get(gameBucket, id, &g); err != nil {
		return GameRecord{}, err
	}
	return g, nil
}

// ListGames returns every game record, sorted by name.
func (s *Store) ListGames() ([]GameRecord, error) {
	var games []GameRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(gameBucket)).ForEach(func(k, v []byte) error {
			var g GameRecord
			if err := json.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("unmarshal game record: %w", err)
			}
			games = append(games, g)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games, nil
}

// DeleteGame removes a game and cascade-deletes its save states, cheats
// and runtime config.
func (s *Store) DeleteGame(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(gameBucket)).Delete([]byte(id)); err != nil {
			return err
		}
		for _, name := range []string{stateBucket, cheatBucket} {
			if err := deletePrefix(tx.Bucket([]byte(name)), subPrefix(id)); err != nil {
				return err
			}
		}
		return tx.Bucket([]byte(runtimeBucket)).Delete([]byte(id))
	})
}

func deletePrefix(b *bbolt.Bucket, prefix []byte) error {
	c := b.Cursor()
	var keys [][]byte
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// PutSaveState persists a save state record.
func (s *Store) PutSaveState(r SaveStateRecord) error {
	if r.ID == "" || r.GameID == "" {
		return fmt.Errorf("save state id and game id are required")
	}
	return s.put(stateBucket, string(subKey(r.GameID, r.ID)), r)
}

// GetSaveState fetches one save state record.
func (s *Store) GetSaveState(gameID, id string) (SaveStateRecord, error) {
	var r SaveStateRecord
	if err := s.get(stateBucket, string(subKey(gameID, id)), &r); err != nil {
		return SaveStateRecord{}, err
	}
	return r, nil
}

// ListSaveStates returns a game's save states sorted oldest first.
func (s *Store) ListSaveStates(gameID string) ([]SaveStateRecord, error) {
	var states []SaveStateRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(stateBucket)).Cursor()
		prefix := subPrefix(gameID)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r SaveStateRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal save state record: %w", err)
			}
			states = append(states, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(states, func(i, j int) bool { return states[i].CreatedAt.Before(states[j].CreatedAt) })
	return states, nil
}

// DeleteSaveState removes one save state record.
func (s *Store) DeleteSaveState(gameID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Delete(subKey(gameID, id))
	})
}

// PutCheat persists a cheat record.
func (s *Store) PutCheat(c CheatRecord) error {
	if c.ID == "" || c.GameID == "" {
		return fmt.Errorf("cheat id and game id are required")
	}
	return s.put(cheatBucket, string(subKey(c.GameID, c.ID)), c)
}

// ListCheats returns a game's cheats sorted by creation time.
func (s *Store) ListCheats(gameID string) ([]CheatRecord, error) {
	var cheats []CheatRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(cheatBucket)).Cursor()
		prefix := subPrefix(gameID)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r CheatRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal cheat record: %w", err)
			}
			cheats = append(cheats, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(cheats, func(i, j int) bool { return cheats[i].CreatedAt.Before(cheats[j].CreatedAt) })
	return cheats, nil
}

// DeleteCheat removes one cheat record.
func (s *Store) DeleteCheat(gameID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(cheatBucket)).Delete(subKey(gameID, id))
	})
}

// PutRuntimeConfig persists a game's runtime settings.
func (s *Store) PutRuntimeConfig(rc RuntimeConfig) error {
	if rc.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	return s.put(runtimeBucket, rc.GameID, rc)
}

// GetRuntimeConfig fetches a game's runtime settings, falling back to
// defaults when none were saved yet.
func (s *Store) GetRuntimeConfig(gameID string) (RuntimeConfig, error) {
	var rc RuntimeConfig
	err := s.get(runtimeBucket, gameID, &rc)
	if errors.Is(err, ErrNotFound) {
		return DefaultRuntimeConfig(gameID), nil
	}
	if err != nil {
		return RuntimeConfig{}, err
	}
	return rc, nil
}
