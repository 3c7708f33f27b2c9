package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tzoracle/oracled/internal/config"
	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/core/state"
	"github.com/tzoracle/oracled/internal/dispatch"
	"github.com/tzoracle/oracled/internal/rpc"
	"github.com/tzoracle/oracled/internal/storage/statestore"
	"github.com/tzoracle/oracled/internal/storage/ticketindex"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the oracle daemon",
	Long: `Start oracled: restores the committed storage document (or seeds it
from the genesis config on a fresh data dir), then serves the operation and
query API over HTTP with a websocket event stream.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Running with no subcommand starts the server.
	rootCmd.RunE = serverCmd.RunE
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)

	store, err := statestore.Open(filepath.Join(cfg.Storage.DataDir, "state"), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	st, found, err := store.LoadStorage()
	if err != nil {
		return err
	}
	if !found {
		st = genesisStorage(cfg.Genesis)
		logger.Info().
			Str("admin", st.Admin).
			Strs("pairs", st.SupportedPairs).
			Msg("fresh data dir, seeding genesis storage")
	}

	engine := op.NewEngine(st, nil)
	engine.OnCommit(func(o op.Operation, draft *state.Storage, effects []effect.Effect) (uint64, error) {
		raw, err := op.ToJSON(o)
		if err != nil {
			return 0, err
		}
		entry := &statestore.LogEntry{
			Kind:      string(o.Kind()),
			Caller:    o.Caller(),
			Amount:    o.Amount(),
			Result:    op.Success.String(),
			AppliedAt: time.Now().Unix(),
			Op:        raw,
		}
		if err := store.Commit(draft, entry); err != nil {
			return 0, err
		}
		return entry.Seq, nil
	})

	index, err := ticketindex.Open(filepath.Join(cfg.Storage.DataDir, "tickets.db"), logger)
	if err != nil {
		return err
	}
	defer index.Close()

	var dispatcher dispatch.Dispatcher
	if len(cfg.Targets) > 0 {
		dispatcher = dispatch.NewHTTPDispatcher(cfg.Targets, logger)
	} else {
		dispatcher = dispatch.NewLogDispatcher(logger)
	}

	hub := rpc.NewHub(logger)
	server := rpc.NewServer(cfg.Server.ListenAddr, engine, store, index, dispatcher, hub, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// genesisStorage builds the initial storage document from the genesis config.
func genesisStorage(g config.GenesisConfig) *state.Storage {
	st := state.New()
	st.Admin = g.Admin
	st.RequestPrice = g.RequestPrice
	for _, w := range g.Whitelist {
		if !st.HasFeeder(w) {
			st.AddFeeder(w)
		}
	}
	for _, p := range g.SupportedPairs {
		if !st.SupportsPair(p) {
			st.AddPair(p)
		}
	}
	return st
}
