package cli

import (
	"encoding/json"
	"fmt"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/storage"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the driver cache",
	}
	cmd.AddCommand(newCacheShowCommand(opts))
	return cmd
}

func newCacheShowCommand(opts *RootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cached token and track durations as JSON",
		Long: `Print the cache from the configured backend. The access token is shortened
unless --reveal is given. An absent cache prints null.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Cache)
			if err != nil {
				return domain.NewError(domain.KindCacheUnavailable, domain.StepCacheLoad, err)
			}
			defer store.Close()

			cache, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if cache != nil && !reveal {
				if token, ok := cache.Credential(); ok {
					cache.SetCredential(logger.Redact(token))
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(cache); err != nil {
				return fmt.Errorf("could not print cache: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the access token in full")
	return cmd
}
