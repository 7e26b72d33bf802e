// Package savestate owns persisted snapshots: creation, retention,
// compatibility checks and loading. Each backend writes blobs through
// its own serialization; this store carries the shared policy —
// per-backend cooldown windows, auto-save FIFO retention and the
// (core, device) fingerprint check at load time.
package savestate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/storage"
)

// ErrNoManualSave is returned by Load when no explicit state is given
// and the game has no manual save to fall back to.
var ErrNoManualSave = errors.New("no manual save state exists")

// Store coordinates save-state records, their blobs and the shared
// retention/compatibility policy.
type Store struct {
	db    *storage.Store
	fs    afero.Fs
	paths storage.Paths

	// device is this machine's identity half of the fingerprint.
	device string

	// autoCap is the per-game retention count for automatic saves.
	autoCap int

	previews *lru.Cache[string, []byte]

	// Cooldown bookkeeping, per game, updated only on success.
	lastSave map[string]time.Time
	lastLoad map[string]time.Time

	now func() time.Time
}

// Options configures a Store.
type Options struct {
	DB      *storage.Store
	FS      afero.Fs
	Paths   storage.Paths
	Device  string
	AutoCap int

	// PreviewCacheSize bounds the in-memory preview cache. Zero uses a
	// small default.
	PreviewCacheSize int
}

// New creates a save-state store.
func New(opts Options) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.AutoCap <= 0 {
		opts.AutoCap = 5
	}
	if opts.PreviewCacheSize <= 0 {
		opts.PreviewCacheSize = 32
	}

	previews, err := lru.New[string, []byte](opts.PreviewCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create preview cache: %w", err)
	}

	return &Store{
		db:       opts.DB,
		fs:       opts.FS,
		paths:    opts.Paths,
		device:   opts.Device,
		autoCap:  opts.AutoCap,
		previews: previews,
		lastSave: make(map[string]time.Time),
		lastLoad: make(map[string]time.Time),
		now:      time.Now,
	}, nil
}

// SaveRequest describes one snapshot to create.
type SaveRequest struct {
	GameID  string
	Kind    storage.SaveKind
	Preview []byte // optional preview image bytes

	// Online and Hardcore reject the save outright: consistency cannot
	// be guaranteed mid-online-session, and hardcore integrity forbids
	// state manipulation.
	Online   bool
	Hardcore bool
}

// Save creates one snapshot through the backend and persists its
// record. Manual saves are refused inside the backend's cooldown
// window; automatic saves instead enforce the retention cap, evicting
// oldest first. A failed backend write registers nothing.
func (s *Store) Save(b backend.Backend, req SaveRequest) (storage.SaveStateRecord, error) {
	if req.Online || req.Hardcore {
		return storage.SaveStateRecord{}, backend.ErrNotAllowed
	}

	now := s.now()
	if req.Kind == storage.SaveManual {
		if last, ok := s.lastSave[req.GameID]; ok && now.Sub(last) < b.Limits().SaveCooldown {
			return storage.SaveStateRecord{}, backend.ErrRateLimited
		}
	}

	game, err := s.db.GetGame(req.GameID)
	if err != nil {
		return storage.SaveStateRecord{}, fmt.Errorf("fetch game: %w", err)
	}

	seq := game.NextStateSeq
	blobPath := fmt.Sprintf("%s/%s-%d.state", s.paths.StateDir(req.GameID), req.Kind, seq)
	if err := s.fs.MkdirAll(s.paths.StateDir(req.GameID), 0o755); err != nil {
		return storage.SaveStateRecord{}, fmt.Errorf("create state dir: %w", err)
	}

	if err := b.SaveState(backend.StateLocator{Path: blobPath}); err != nil {
		return storage.SaveStateRecord{}, err
	}

	rec := storage.SaveStateRecord{
		ID:        uuid.NewString(),
		GameID:    req.GameID,
		Kind:      req.Kind,
		CreatedAt: now,
		BlobPath:  blobPath,
		Core:      b.CoreID(),
		Device:    s.device,
	}

	if len(req.Preview) > 0 {
		if err := s.writePreview(&rec, req.Preview); err != nil {
			return storage.SaveStateRecord{}, err
		}
	}

	if req.Kind == storage.SaveAuto {
		if err := s.evictAutoSaves(req.GameID); err != nil {
			return storage.SaveStateRecord{}, err
		}
	}

	if err := s.db.PutSaveState(rec); err != nil {
		return storage.SaveStateRecord{}, fmt.Errorf("persist save state: %w", err)
	}

	game.NextStateSeq++
	if err := s.db.PutGame(game); err != nil {
		return storage.SaveStateRecord{}, fmt.Errorf("advance state seq: %w", err)
	}

	if req.Kind == storage.SaveManual {
		s.lastSave[req.GameID] = now
	}
	return rec, nil
}

// writePreview stores the preview image next to the blob and caches it.
func (s *Store) writePreview(rec *storage.SaveStateRecord, preview []byte) error {
	if err := s.fs.MkdirAll(s.paths.PreviewDir(rec.GameID), 0o755); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}
	path := fmt.Sprintf("%s/%s.png", s.paths.PreviewDir(rec.GameID), rec.ID)
	if err := afero.WriteFile(s.fs, path, preview, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	rec.PreviewPath = path
	s.previews.Add(rec.ID, preview)
	return nil
}

// evictAutoSaves deletes the oldest automatic saves so that inserting
// one more keeps the game at the retention cap.
func (s *Store) evictAutoSaves(gameID string) error {
	states, err := s.db.ListSaveStates(gameID)
	if err != nil {
		return fmt.Errorf("list save states: %w", err)
	}

	var autos []storage.SaveStateRecord
	for _, st := range states {
		if st.Kind == storage.SaveAuto {
			autos = append(autos, st)
		}
	}
	// states are sorted oldest first; drop from the front.
	for len(autos) >= s.autoCap {
		if err := s.Delete(autos[0]); err != nil {
			return err
		}
		autos = autos[1:]
	}
	return nil
}

// LoadRequest describes one load. A nil State resolves to the game's
// most recent manual save.
type LoadRequest struct {
	GameID string
	State  *storage.SaveStateRecord

	// Force proceeds past a fingerprint mismatch.
	Force bool

	Online   bool
	Hardcore bool
}

// Load restores a snapshot through the backend. A fingerprint mismatch
// (different producing core or device) is refused with ErrIncompatible
// unless forced; the caller owns the confirmation flow.
func (s *Store) Load(b backend.Backend, req LoadRequest) (storage.SaveStateRecord, error) {
	if req.Online || req.Hardcore {
		return storage.SaveStateRecord{}, backend.ErrNotAllowed
	}

	now := s.now()
	if last, ok := s.lastLoad[req.GameID]; ok && now.Sub(last) < b.Limits().LoadCooldown {
		return storage.SaveStateRecord{}, backend.ErrRateLimited
	}

	rec := req.State
	if rec == nil {
		latest, err := s.latestManual(req.GameID)
		if err != nil {
			return storage.SaveStateRecord{}, err
		}
		rec = latest
	}

	if !req.Force && (rec.Core != b.CoreID() || rec.Device != s.device) {
		return storage.SaveStateRecord{}, backend.ErrIncompatible
	}

	if err := b.LoadState(backend.StateLocator{Path: rec.BlobPath}); err != nil {
		return storage.SaveStateRecord{}, err
	}

	s.lastLoad[req.GameID] = now
	return *rec, nil
}

// latestManual resolves the game's most recent manual save.
func (s *Store) latestManual(gameID string) (*storage.SaveStateRecord, error) {
	states, err := s.db.ListSaveStates(gameID)
	if err != nil {
		return nil, fmt.Errorf("list save states: %w", err)
	}
	// states are sorted oldest first; scan from the back.
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].Kind == storage.SaveManual {
			return &states[i], nil
		}
	}
	return nil, ErrNoManualSave
}

// List returns a game's save states, oldest first.
func (s *Store) List(gameID string) ([]storage.SaveStateRecord, error) {
	return s.db.ListSaveStates(gameID)
}

// Delete removes a record together with its blob and preview.
func (s *Store) Delete(rec storage.SaveStateRecord) error {
	if err := s.db.DeleteSaveState(rec.GameID, rec.ID); err != nil {
		return fmt.Errorf("delete save state record: %w", err)
	}
	if err := s.fs.Remove(rec.BlobPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	if rec.PreviewPath != "" {
		s.previews.Remove(rec.ID)
		if err := s.fs.Remove(rec.PreviewPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete preview: %w", err)
		}
	}
	return nil
}

// Preview returns a state's preview image, reading through the cache.
func (s *Store) Preview(rec storage.SaveStateRecord) ([]byte, error) {
	if data, ok := s.previews.Get(rec.ID); ok {
		return data, nil
	}
	if rec.PreviewPath == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(s.fs, rec.PreviewPath)
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	s.previews.Add(rec.ID, data)
	return data, nil
}
