// Package cheats manages cheat records and pushes them into the active
// backend. Code validation belongs to the backend that speaks the
// dialect; this store owns persistence and batch activation semantics.
package cheats

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/storage"
)

// Store persists cheats and applies them to backends.
type Store struct {
	db  *storage.Store
	now func() time.Time

	// announced tracks, per game, the cheats already reported active so
	// re-applying an unchanged list announces nothing new.
	announced map[string]map[string]bool
}

// New creates a cheat store over the record database.
func New(db *storage.Store) *Store {
	return &Store{
		db:        db,
		now:       time.Now,
		announced: make(map[string]map[string]bool),
	}
}

// Add creates a new cheat record for a game.
func (s *Store) Add(gameID, name, code string, dialect backend.Dialect, enabled bool) (storage.CheatRecord, error) {
	rec := storage.CheatRecord{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Name:      name,
		Code:      code,
		Dialect:   string(dialect),
		Enabled:   enabled,
		CreatedAt: s.now(),
	}
	if err := s.db.PutCheat(rec); err != nil {
		return storage.CheatRecord{}, fmt.Errorf("persist cheat: %w", err)
	}
	return rec, nil
}

// Update overwrites an existing cheat record.
func (s *Store) Update(rec storage.CheatRecord) error {
	if err := s.db.PutCheat(rec); err != nil {
		return fmt.Errorf("persist cheat: %w", err)
	}
	return nil
}

// Delete removes a cheat record.
func (s *Store) Delete(gameID, id string) error {
	return s.db.DeleteCheat(gameID, id)
}

// List returns a game's cheats in creation order.
func (s *Store) List(gameID string) ([]storage.CheatRecord, error) {
	return s.db.ListCheats(gameID)
}

// Failure records one cheat the backend rejected.
type Failure struct {
	Name string
	Err  error
}

// Report summarizes a batch activation. Activated names only the cheats
// that became active in this batch, not ones already running.
type Report struct {
	Activated []string
	Failures  []Failure
}

// Apply pushes the game's full cheat list into the backend. Disabled
// cheats are explicitly deactivated, not omitted. A rejected code never
// aborts the rest of the batch; the report carries both outcomes. The
// backend is paused for the duration when it was running.
func (s *Store) Apply(b backend.Backend, gameID string) (Report, error) {
	records, err := s.db.ListCheats(gameID)
	if err != nil {
		return Report{}, fmt.Errorf("list cheats: %w", err)
	}

	wasRunning := b.Running()
	if wasRunning {
		b.Pause()
		defer b.Resume()
	}

	active := s.announced[gameID]
	if active == nil {
		active = make(map[string]bool)
		s.announced[gameID] = active
	}

	var report Report
	for _, rec := range records {
		err := b.ApplyCheat(backend.Cheat{
			ID:      rec.ID,
			Name:    rec.Name,
			Code:    rec.Code,
			Dialect: backend.Dialect(rec.Dialect),
			Enabled: rec.Enabled,
		})
		if err != nil {
			delete(active, rec.ID)
			report.Failures = append(report.Failures, Failure{Name: rec.Name, Err: err})
			continue
		}
		if !rec.Enabled {
			delete(active, rec.ID)
			continue
		}
		if !active[rec.ID] {
			active[rec.ID] = true
			report.Activated = append(report.Activated, rec.Name)
		}
	}
	return report, nil
}
