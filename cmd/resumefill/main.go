package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/ai"
	"github.com/v0xg/resumefill/internal/config"
	"github.com/v0xg/resumefill/internal/logger"
	"github.com/v0xg/resumefill/internal/memory"
	"github.com/v0xg/resumefill/internal/profile"
	"github.com/v0xg/resumefill/internal/resume"
	"github.com/v0xg/resumefill/internal/store"
)

var configFile string

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resumefill",
		Short: "Fill web application forms from your résumé using AI",
		Long: `resumefill turns a résumé into structured JSON with a language model, then
opens a form in Chromium, asks the model which résumé value belongs in which
field and writes the values into the page. It never submits the form.

Example:
  resumefill resume parse cv.pdf
  resumefill fill "https://jobs.example.com/apply/123" --keep-open`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./resumefill.yaml)")
	root.PersistentFlags().Bool("debug", false, "Log at debug level")
	root.PersistentFlags().Bool("json", false, "Log as JSON")

	root.AddCommand(
		newFillCmd(),
		newSnapshotCmd(),
		newResumeCmd(),
		newMemoryCmd(),
		newModelsCmd(),
	)
	return root
}

// app holds what every command needs: configuration, logger and the stores
// built on the configured backend.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	kv       store.KV
	resumes  *resume.Service
	memory   *memory.Store
	profiles *profile.Manager
}

func openApp(cmd *cobra.Command) (*app, error) {
	v := viper.New()
	for _, name := range []string{"debug", "json"} {
		if err := v.BindPFlag(name, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	kv, err := store.Open(cmd.Context(), cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Debug("storage opened", zap.String("driver", cfg.Storage.Driver))

	return &app{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		resumes:  resume.NewService(kv, cfg.Resume.MaxChars, log),
		memory:   memory.NewStore(kv, log),
		profiles: profile.NewManager(kv),
	}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Warn("close storage", zap.Error(err))
	}
	_ = a.log.Sync()
}

// provider builds a client for the active model profile. An unconfigured
// profile yields ai.ErrConfigIncomplete.
func (a *app) provider(ctx context.Context) (ai.Provider, profile.Profile, error) {
	p, err := a.profiles.Active(ctx)
	if err != nil {
		return nil, profile.Profile{}, err
	}
	if !p.Configured() {
		return nil, p, fmt.Errorf("%w: set an API key with `resumefill models add --id %s`", ai.ErrConfigIncomplete, p.ID)
	}
	client, err := ai.NewProvider(p.AIConfig(a.cfg.Model.Timeout, a.log))
	if err != nil {
		return nil, p, err
	}
	return client, p, nil
}

// optionalProvider is provider for callers that report a missing
// configuration themselves.
func (a *app) optionalProvider(ctx context.Context) (ai.Provider, error) {
	p, _, err := a.provider(ctx)
	if errors.Is(err, ai.ErrConfigIncomplete) {
		return nil, nil
	}
	return p, err
}
