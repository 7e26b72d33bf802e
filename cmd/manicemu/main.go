// Command manicemu manages the game library, save states and cheats
// from the terminal. Emulation itself runs under the front-end; this
// tool operates on the same data directory.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/bios"
	"github.com/rylanraj/manicemu/cheats"
	"github.com/rylanraj/manicemu/console"
	"github.com/rylanraj/manicemu/savestate"
	"github.com/rylanraj/manicemu/storage"
)

func main() {
	app := cli.NewApp()
	app.Name = "manicemu"
	app.Usage = "manage the game library, save states and cheats"
	app.Commands = []cli.Command{
		importCommand(),
		listCommand(),
		statesCommand(),
		cheatsCommand(),
		biosCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env opens the data directory, record store and blob filesystem.
type env struct {
	paths storage.Paths
	db    *storage.Store
	fs    afero.Fs
}

func openEnv() (*env, error) {
	paths, err := storage.ResolvePaths()
	if err != nil {
		return nil, err
	}
	fs := afero.NewOsFs()
	if err := paths.Ensure(fs); err != nil {
		return nil, err
	}
	db, err := storage.Open(paths.DBPath())
	if err != nil {
		return nil, err
	}
	return &env{paths: paths, db: db, fs: fs}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		log.Printf("close db: %v", err)
	}
}

func importCommand() cli.Command {
	return cli.Command{
		Name:      "import",
		Usage:     "add a game to the library",
		ArgsUsage: "<console> <rom path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: manicemu import <console> <rom path>")
			}
			ct := console.Parse(c.Args().Get(0))
			if !ct.Valid() {
				return fmt.Errorf("unknown console %q", c.Args().Get(0))
			}
			romPath, err := filepath.Abs(c.Args().Get(1))
			if err != nil {
				return err
			}
			if _, err := os.Stat(romPath); err != nil {
				return fmt.Errorf("rom not found: %w", err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			name := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
			game := storage.GameRecord{
				ID:      uuid.NewString(),
				Name:    name,
				Path:    romPath,
				Console: ct,
				AddedAt: time.Now().UTC(),
			}
			if err := e.db.PutGame(game); err != nil {
				return err
			}
			fmt.Printf("imported %s (%s) as %s\n", name, ct, game.ID)
			return nil
		},
	}
}

func listCommand() cli.Command {
	return cli.Command{
		Name:  "list",
		Usage: "list the game library",
		Action: func(c *cli.Context) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			games, err := e.db.ListGames()
			if err != nil {
				return err
			}
			for _, g := range games {
				played := time.Duration(g.PlayTimeSeconds) * time.Second
				fmt.Printf("%s  %-30s %-20s played %s\n", g.ID, g.Name, g.Console, played)
			}
			return nil
		},
	}
}

func statesCommand() cli.Command {
	return cli.Command{
		Name:  "states",
		Usage: "manage save states",
		Subcommands: []cli.Command{
			{
				Name:      "list",
				Usage:     "list a game's save states",
				ArgsUsage: "<game id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: manicemu states list <game id>")
					}
					e, err := openEnv()
					if err != nil {
						return err
					}
					defer e.close()

					states, err := e.db.ListSaveStates(c.Args().First())
					if err != nil {
						return err
					}
					for _, st := range states {
						fmt.Printf("%s  %-6s %s  core=%s\n", st.ID, st.Kind, st.CreatedAt.Format(time.RFC3339), st.Core)
					}
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete one save state",
				ArgsUsage: "<game id> <state id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("usage: manicemu states delete <game id> <state id>")
					}
					e, err := openEnv()
					if err != nil {
						return err
					}
					defer e.close()

					rec, err := e.db.GetSaveState(c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					store, err := savestate.New(savestate.Options{DB: e.db, FS: e.fs, Paths: e.paths})
					if err != nil {
						return err
					}
					return store.Delete(rec)
				},
			},
		},
	}
}

func cheatsCommand() cli.Command {
	return cli.Command{
		Name:  "cheats",
		Usage: "manage cheats",
		Subcommands: []cli.Command{
			{
				Name:      "list",
				Usage:     "list a game's cheats",
				ArgsUsage: "<game id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: manicemu cheats list <game id>")
					}
					e, err := openEnv()
					if err != nil {
						return err
					}
					defer e.close()

					records, err := cheats.New(e.db).List(c.Args().First())
					if err != nil {
						return err
					}
					for _, r := range records {
						state := "off"
						if r.Enabled {
							state = "on"
						}
						fmt.Printf("%s  %-3s %-20s [%s] %s\n", r.ID, state, r.Name, r.Dialect, r.Code)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "add a cheat",
				ArgsUsage: "<game id> <name> <dialect> <code>",
				Flags: []cli.Flag{
					cli.BoolFlag{Name: "enabled", Usage: "activate the cheat immediately"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 4 {
						return fmt.Errorf("usage: manicemu cheats add <game id> <name> <dialect> <code>")
					}
					e, err := openEnv()
					if err != nil {
						return err
					}
					defer e.close()

					rec, err := cheats.New(e.db).Add(
						c.Args().Get(0), c.Args().Get(1), c.Args().Get(3),
						backend.Dialect(c.Args().Get(2)), c.Bool("enabled"),
					)
					if err != nil {
						return err
					}
					fmt.Printf("added cheat %s\n", rec.ID)
					return nil
				},
			},
		},
	}
}

func biosCommand() cli.Command {
	return cli.Command{
		Name:  "bios",
		Usage: "check firmware requirements",
		Action: func(c *cli.Context) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			for _, ct := range console.All() {
				required := bios.Required(ct)
				if len(required) == 0 {
					continue
				}
				missing, err := bios.Missing(e.fs, e.paths.BIOSDir(), ct)
				if err != nil {
					return err
				}
				status := "ok"
				if len(missing) > 0 {
					names := make([]string, len(missing))
					for i, f := range missing {
						names[i] = f.FileName
					}
					status = "missing " + strings.Join(names, ", ")
				}
				fmt.Printf("%-25s %s\n", ct, status)
			}
			return nil
		},
	}
}
