package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/driver"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/aptos"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/metrics"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/spotify"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const pushTimeout = 5 * time.Second

// NewRunCommand creates the run command, the same pass the bare root
// command performs.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the driver once",
		Long: `Run the driver once: check the cached Spotify token, read the current
song, look up its length and submit resolve_votes if it is due.

Example:
  jukebox-driver run --account-private-key 0x... --spotify-client-id ... --spotify-client-secret ...
  JUKEBOX_DRIVER_DRY_RUN=true jukebox-driver run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(cmd, opts)
		},
	}
}

func runDriver(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger.Init(cmd.ErrOrStderr(), cfg.Driver.Debug)
	logger.WithRun(uuid.NewString())

	account, err := aptos.NewAccount(cfg.Aptos.PrivateKey)
	if err != nil {
		return domain.NewError(domain.KindConfigInvalid, domain.StepConfig, err)
	}
	coords, err := aptos.Coordinates(cfg.Aptos, account)
	if err != nil {
		return domain.NewError(domain.KindConfigInvalid, domain.StepConfig, err)
	}
	logger.Log.Debug().Str("account", account.Address.String()).Str("resource", coords.ResourceType()).Msg("Resolved on-chain coordinates")

	store, err := storage.New(cfg.Cache)
	if err != nil {
		return domain.NewError(domain.KindCacheUnavailable, domain.StepCacheLoad, err)
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: cfg.Driver.RequestTimeout}
	meta := spotify.NewClient(cfg.Spotify, httpClient)
	ledger := aptos.NewClient(cfg.Aptos, account, httpClient)
	recorder := metrics.NewRecorder()

	d := driver.New(
		store,
		driver.NewCredentialManager(meta, store, cfg.Spotify.CanaryTrackID, cfg.Driver.RequestTimeout, recorder),
		driver.NewTrackResolver(meta, store, cfg.Driver.RequestTimeout, recorder),
		driver.NewSongFetcher(ledger, account.Address.String(), coords, cfg.Driver.RequestTimeout),
		driver.NewTrigger(ledger, coords, cfg.Aptos.MaxGas, cfg.Aptos.GasUnitPrice, cfg.Aptos.ChainID, cfg.Driver.RequestTimeout, cfg.Driver.SubmitTimeout),
		driver.SystemClock{},
		recorder,
		driver.Options{
			ThresholdMs:    cfg.Driver.ResolveVotesThresholdMs,
			RequestTimeout: cfg.Driver.RequestTimeout,
			DryRun:         cfg.Driver.DryRun,
		},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report, runErr := d.Run(ctx)
	recorder.Run(runErr, time.Since(start))

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		if err := recorder.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logger.Log.Warn().Err(err).Str("url", cfg.Metrics.PushgatewayURL).Msg("Could not push metrics")
		}
		cancel()
	}

	if runErr != nil {
		return runErr
	}

	event := logger.Log.Info().
		Str("track_id", report.TrackID).
		Bool("should_resolve", report.ShouldResolve).
		Bool("triggered", report.Triggered).
		Int64("remaining_ms", report.RemainingMs)
	if report.Tx != nil {
		event = event.Str("hash", report.Tx.Hash)
	}
	event.Msg("Run complete")
	return nil
}
