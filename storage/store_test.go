package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rylanraj/manicemu/console"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGameRoundTrip(t *testing.T) {
	s := openTestStore(t)

	g := GameRecord{
		ID:      "g1",
		Name:    "Tetris",
		Path:    "/roms/tetris.gb",
		Console: console.GB,
		AddedAt: time.Now().UTC(),
	}
	require.NoError(t, s.PutGame(g))

	got, err := s.GetGame("g1")
	require.NoError(t, err)
	require.Equal(t, g.Name, got.Name)
	require.Equal(t, console.GB, got.Console)
}

func TestGetGameNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetGame("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListGamesSorted(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutGame(GameRecord{ID: "g1", Name: "Zelda"}))
	require.NoError(t, s.PutGame(GameRecord{ID: "g2", Name: "Mario"}))

	games, err := s.ListGames()
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, "Mario", games[0].Name)
	require.Equal(t, "Zelda", games[1].Name)
}

func TestSaveStatesSortedOldestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order; listing sorts by creation time.
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "s2", GameID: "g1", CreatedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "s1", GameID: "g1", CreatedAt: base.Add(1 * time.Minute)}))
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "s3", GameID: "g1", CreatedAt: base.Add(3 * time.Minute)}))
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "sx", GameID: "g2", CreatedAt: base}))

	states, err := s.ListSaveStates("g1")
	require.NoError(t, err)
	require.Len(t, states, 3)
	require.Equal(t, "s1", states[0].ID)
	require.Equal(t, "s3", states[2].ID)
}

func TestDeleteGameCascades(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutGame(GameRecord{ID: "g1", Name: "Tetris"}))
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "s1", GameID: "g1", CreatedAt: time.Now()}))
	require.NoError(t, s.PutCheat(CheatRecord{ID: "c1", GameID: "g1", Name: "Infinite HP"}))
	require.NoError(t, s.PutRuntimeConfig(RuntimeConfig{GameID: "g1", Speed: 2.0}))

	// A second game's records must survive the cascade.
	require.NoError(t, s.PutSaveState(SaveStateRecord{ID: "s1", GameID: "g2", CreatedAt: time.Now()}))

	require.NoError(t, s.DeleteGame("g1"))

	_, err := s.GetGame("g1")
	require.ErrorIs(t, err, ErrNotFound)

	states, err := s.ListSaveStates("g1")
	require.NoError(t, err)
	require.Empty(t, states)

	cheats, err := s.ListCheats("g1")
	require.NoError(t, err)
	require.Empty(t, cheats)

	rc, err := s.GetRuntimeConfig("g1")
	require.NoError(t, err)
	require.Equal(t, 1.0, rc.Speed) // back to defaults

	other, err := s.ListSaveStates("g2")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestRuntimeConfigDefaults(t *testing.T) {
	s := openTestStore(t)

	rc, err := s.GetRuntimeConfig("g1")
	require.NoError(t, err)
	require.Equal(t, 1.0, rc.Speed)
	require.Equal(t, 1.0, rc.Volume)
	require.True(t, rc.Haptics)

	rc.Speed = 2.0
	require.NoError(t, s.PutRuntimeConfig(rc))

	got, err := s.GetRuntimeConfig("g1")
	require.NoError(t, err)
	require.Equal(t, 2.0, got.Speed)
}

func TestCheatRoundTrip(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutCheat(CheatRecord{ID: "c1", GameID: "g1", Name: "Moon Jump", Code: "ABCD-1234", Dialect: "GameGenie", Enabled: true, CreatedAt: base}))
	require.NoError(t, s.PutCheat(CheatRecord{ID: "c2", GameID: "g1", Name: "Max Coins", CreatedAt: base.Add(time.Minute)}))

	cheats, err := s.ListCheats("g1")
	require.NoError(t, err)
	require.Len(t, cheats, 2)
	require.Equal(t, "Moon Jump", cheats[0].Name)

	require.NoError(t, s.DeleteCheat("g1", "c1"))
	cheats, err = s.ListCheats("g1")
	require.NoError(t, err)
	require.Len(t, cheats, 1)
	require.Equal(t, "Max Coins", cheats[0].Name)
}
