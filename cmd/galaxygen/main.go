// galaxygen turns a painted map into a static galaxy scenario file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paintgalaxy/server/internal/client"
	"github.com/paintgalaxy/server/internal/config"
	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/mapfile"
	"github.com/paintgalaxy/server/internal/namefilter"
	"github.com/paintgalaxy/server/internal/scenario"
)

var errUsage = errors.New("-map is required")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		os.Exit(1)
	}
}

func run() error {
	mapFile := flag.String("map", "", "Painted map to convert (.yaml, .yml or .json)")
	outFile := flag.String("out", "", "Scenario output file (empty for stdout)")
	seed := flag.Int64("seed", 0, "Initializer seed (default: random based on current time)")
	configFile := flag.String("config", "data/config.yaml", "Path to config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	envFile := flag.String("env", ".env", "Path to .env file (skipped if missing)")
	save := flag.Bool("save", false, "Archive the generated scenario")
	quiet := flag.Bool("quiet", false, "Don't print the summary")
	remote := flag.String("remote", "", "Use a running galaxyd at this URL instead of generating locally")
	token := flag.String("token", "", "Admin token for -delete with -remote (default: PAINTGALAXY_ADMIN_TOKEN)")

	var cmd archiveCommand
	flag.BoolVar(&cmd.list, "list", false, "List archived scenarios and exit")
	flag.StringVar(&cmd.show, "show", "", "Print an archived scenario by id and exit")
	history := flag.String("history", "", "List archived generations of this painted map and exit")
	flag.StringVar(&cmd.verify, "verify", "", "Regenerate an archived scenario by id and check it matches")
	flag.StringVar(&cmd.delete, "delete", "", "Delete an archived scenario by id and exit")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *history != "" {
		m, err := mapfile.Load(*history)
		if err != nil {
			return err
		}
		if cmd.history, err = mapfile.Fingerprint(m); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if cmd.requested() {
		if *remote != "" {
			adminToken := *token
			if adminToken == "" {
				adminToken = cfg.Server.AdminToken
			}
			return printArchive(ctx, &remoteArchive{client: client.New(*remote), token: adminToken}, cmd)
		}

		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return printArchive(ctx, &localArchive{db: db, service: newService(cfg, db)}, cmd)
	}

	if *mapFile == "" {
		return errUsage
	}

	m, err := mapfile.Load(*mapFile)
	if err != nil {
		return err
	}

	var seedPtr *int64
	if *seed != 0 {
		seedPtr = seed
	}

	var res *scenario.Result
	if *remote != "" {
		remoteRes, err := client.New(*remote).Generate(ctx, m, seedPtr, *save)
		if err != nil {
			return err
		}
		res = &remoteRes.Result
	} else if res, err = generateLocal(ctx, cfg, m, seedPtr, *save); err != nil {
		return err
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(res.Scenario), 0644); err != nil {
			return fmt.Errorf("failed to write scenario: %w", err)
		}
	} else {
		fmt.Println(res.Scenario)
	}

	if !*quiet {
		fmt.Fprintln(os.Stderr, renderSummary(m.Name, res))
	}
	return nil
}

func newService(cfg *config.Config, store scenario.Store) *scenario.Service {
	service := scenario.NewService(cfg.Galaxy, store)
	service.SetNameFilter(namefilter.New(&cfg.NameFilter))
	return service
}

func generateLocal(ctx context.Context, cfg *config.Config, m *galaxy.Map, seed *int64, save bool) (*scenario.Result, error) {
	var store scenario.Store
	if save {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		store = db
	}

	return newService(cfg, store).Generate(ctx, scenario.Request{Map: m, Seed: seed, Save: save})
}

func printArchive(ctx context.Context, a archive, cmd archiveCommand) error {
	out, err := runArchiveCommand(ctx, a, cmd)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
