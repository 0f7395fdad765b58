// Command berger-server runs the round-robin tournament service: the JSON
// API, the websocket watch endpoint and the background completion sweeper,
// all backed by a SQLite database.
package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/cohortclub/berger/internal/database"
	"github.com/cohortclub/berger/internal/gamesrc"
	"github.com/cohortclub/berger/internal/manager"
	"github.com/cohortclub/berger/internal/tourneyapi"
	"github.com/cohortclub/berger/internal/version"
	"github.com/cohortclub/berger/internal/watch"
)

var serverCmd = &cobra.Command{
	Use:     "berger-server",
	Args:    cobra.ExactArgs(0),
	Version: version.Version,
	Short:   "Run the round-robin tournament server",
	Long: `Berger runs cohort-based round-robin chess tournaments: players queue on
per-cohort waitlists, full waitlists start tournaments, and results arrive as
Lichess or Chess.com game links.

This command runs the server.
`,
}

func main() {
	p := serverCmd.Flags()
	optsPath := p.StringP(
		"options", "o", "",
		"options file",
	)
	secretsPath := p.StringP(
		"secrets", "s", "",
		"secrets file",
	)
	if err := serverCmd.MarkFlagRequired("options"); err != nil {
		panic(err)
	}
	if err := serverCmd.MarkFlagRequired("secrets"); err != nil {
		panic(err)
	}

	serverCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rawSecrets, err := os.ReadFile(*secretsPath)
		if err != nil {
			rawSecrets = nil
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("read secrets: %w", err)
			}
		}
		var secrets Secrets
		if err := toml.Unmarshal(rawSecrets, &secrets); err != nil {
			return fmt.Errorf("unmarshal secrets: %w", err)
		}
		secretsChanged, err := secrets.GenerateMissing()
		if err != nil {
			return fmt.Errorf("generate secrets: %w", err)
		}
		if secretsChanged {
			newRawSecrets, err := toml.Marshal(&secrets)
			if err != nil {
				return fmt.Errorf("marshal secrets: %w", err)
			}
			if err := os.WriteFile(*secretsPath, newRawSecrets, 0600); err != nil {
				return fmt.Errorf("write secrets: %w", err)
			}
		}

		rawOpts, err := os.ReadFile(*optsPath)
		if err != nil {
			return fmt.Errorf("read options: %w", err)
		}
		var opts Options
		if err := toml.Unmarshal(rawOpts, &opts); err != nil {
			return fmt.Errorf("unmarshal options: %w", err)
		}
		opts.MixSecrets(&secrets)
		opts.FillDefaults()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		log := slog.Default()

		db, err := database.New(log, opts.DB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		hub := watch.NewHub(log, opts.Watch)
		defer hub.Close()

		mgr := manager.New(log, db, gamesrc.NewClient(opts.Games), opts.Manager, hub)
		defer mgr.Close()

		mux := http.NewServeMux()
		err = tourneyapi.RegisterServer(tourneyapi.NewService(mgr), mux, tourneyapi.ServerOptions{
			TokenChecker: func(token string) error {
				if subtle.ConstantTimeCompare([]byte(token), []byte(opts.apiToken)) != 1 {
					return fmt.Errorf("bad token")
				}
				return nil
			},
		}, opts.APIPrefix, log)
		if err != nil {
			return fmt.Errorf("register api: %w", err)
		}
		mux.Handle(opts.APIPrefix+"/watch", hub.Handler(mgr))

		servers, err := newServers(ctx, log, &opts, mux)
		if err != nil {
			return fmt.Errorf("create servers: %w", err)
		}
		servers.Go()
		defer servers.Shutdown()

		<-ctx.Done()
		return nil
	}

	if err := serverCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
