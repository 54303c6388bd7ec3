// Package main provides the blackhand player entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/app/library"
	"github.com/osa030/blackhand/internal/app/playback"
	"github.com/osa030/blackhand/internal/domain/catalog"
	"github.com/osa030/blackhand/internal/infra/config"
	"github.com/osa030/blackhand/internal/infra/logger"
	"github.com/osa030/blackhand/internal/infra/mp3"
	"github.com/osa030/blackhand/internal/infra/output"
)

var (
	app        = kingpin.New("blackhand", "blackhand MP3 player")
	configPath = app.Flag("config", "Path to config file").Default("config/blackhand.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	audioRoot  = app.Flag("root", "Audio library root (overrides config)").String()

	// scan command (default)
	scanCmd = app.Command("scan", "Scan the audio library and print the catalog (default)").Default()

	// play command
	playCmd      = app.Command("play", "Play one track and exit when it ends")
	playIndex    = playCmd.Arg("index", "Catalog index of the track").Required().Int()
	playDriver   = playCmd.Flag("driver", "Output driver (overrides config)").String()
	playNoStatus = playCmd.Flag("no-status", "Do not print the status line").Bool()

	// list-outputs command
	listOutputsCmd = app.Command("list-outputs", "List available output drivers and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listOutputsCmd.FullCommand() {
		fmt.Println(renderOutputs())
		return
	}

	loggerConfig := logger.Config{Output: "stderr", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if found {
		zlog.Debug().Msgf("Loaded config from %s", *configPath)
	} else {
		zlog.Debug().Msgf("No config at %s, using defaults", *configPath)
	}
	if *audioRoot != "" {
		cfg.Library.Root = *audioRoot
	}

	if err := run(command, cfg); err != nil {
		zlog.Error().Msgf("%v", err)
		closer.Close()
		os.Exit(1)
	}
}

// run executes the selected command. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(command string, cfg *config.Config) error {
	cat, err := scanLibrary(cfg)
	if err != nil {
		return err
	}

	switch command {
	case playCmd.FullCommand():
		if *playDriver != "" {
			cfg.Output.Driver = *playDriver
			cfg.Output.Settings = nil
		}
		return runPlay(context.Background(), cfg, cat, *playIndex, !*playNoStatus)
	default:
		fmt.Println(renderCatalog(cat))
		return nil
	}
}

func scanLibrary(cfg *config.Config) (*catalog.Catalog, error) {
	var opts []library.Option
	if cfg.Library.ProbeDuration {
		opts = append(opts, library.WithDurationProber(mp3.ProbeDuration))
	}

	cat, err := library.Scan(cfg.Library.Root, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "library scan failed")
	}
	return cat, nil
}

// newController wires the mp3 decoder and the configured output driver into
// a playback controller.
func newController(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*playback.Controller, error) {
	driver, err := output.Lookup(cfg.Output.Driver, cfg.Output.Settings)
	if err != nil {
		return nil, err
	}
	if driver.Name() == "speaker" && !output.AudioAvailable {
		zlog.Warn().Msg("Built without audio support; tracks will fail to play on the speaker driver")
	}

	return playback.NewController(ctx, playback.Config{
		OpenDecoder: func(path string) (playback.Decoder, error) {
			d, err := mp3.Open(path)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		NewOutput: func() playback.Output {
			return driver.New()
		},
		PollInterval: cfg.PollInterval(),
		EventBuffer:  cfg.Playback.EventBuffer,
	}, cat), nil
}
