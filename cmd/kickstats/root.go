package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/stadium"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
)

const dbDirPermission = 0o750

// options are the flags shared by every subcommand.
type options struct {
	dbPath       string
	stadiumsPath string
	logLevel     string
	legacyZero   bool
	tiesAsWins   bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "kickstats",
		Short:         "Match stats from the command line",
		Long:          "Replay live match feeds, archive finished matches and compare archived players.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := logger.InitWithWriter(os.Stderr); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return logger.SetLevelString(o.logLevel)
		},
	}

	defaultDB := filepath.Join(userHome(), ".kickhub", "kickhub.db")
	root.PersistentFlags().StringVar(&o.dbPath, "db", defaultDB, "path to the SQLite archive")
	root.PersistentFlags().StringVar(&o.stadiumsPath, "stadiums", "", "YAML stadium geometry file")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&o.legacyZero, "legacy-zero", true, "treat a zero score or time as absent")
	root.PersistentFlags().BoolVar(&o.tiesAsWins, "ties-as-wins", false, "count tied matches as wins in records")

	root.AddCommand(newReplayCmd(o), newImportCmd(o), newCompareCmd(o))
	return root
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func (o *options) stadiums() (*stadium.Provider, error) {
	if o.stadiumsPath == "" {
		return stadium.NewProvider(), nil
	}
	return stadium.Load(o.stadiumsPath)
}

// openService opens the archive at --db and builds a service over it. The
// caller closes the returned store.
func (o *options) openService(ctx context.Context) (*service.Service, repository.Store, error) {
	stadiums, err := o.stadiums()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(o.dbPath), dbDirPermission); err != nil {
		return nil, nil, fmt.Errorf("create archive dir: %w", err)
	}
	store, err := repository.OpenSQLite(ctx, o.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	svc := service.New(
		service.WithStore(store),
		service.WithStadiums(stadiums),
		service.WithLegacyZeroSwallow(o.legacyZero),
		service.WithTiesAsWins(o.tiesAsWins),
	)
	return svc, store, nil
}

// readEvents decodes one JSON event per line from path, or from stdin when
// path is "-". Blank lines are skipped.
func readEvents(cmd *cobra.Command, path string) ([]model.Event, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open events: %w", err)
		}
		defer f.Close()
		r = f
	}

	var events []model.Event
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var e model.Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", len(events)+1, err)
		}
		events = append(events, e)
	}
}
