package cli

import (
	"errors"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/services/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RootOptions holds state shared by every command.
type RootOptions struct {
	ConfigFile string

	v *viper.Viper
}

// NewRootCommand creates the jukebox-driver command. Invoked without a
// subcommand it performs a single driver run.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}
	config.SetDefaults(opts.v)

	cmd := &cobra.Command{
		Use:   "jukebox-driver",
		Short: "Resolve jukebox votes when the current song is about to end",
		Long: `jukebox-driver reads the head of the on-chain song queue, looks up the
track length on Spotify and submits resolve_votes once less than the
threshold is left. It does one pass and exits; run it from a scheduler at
least twice per threshold window.

Every flag can also be set in config.yaml or through JUKEBOX_* environment
variables, e.g. JUKEBOX_APTOS_ACCOUNT_PRIVATE_KEY.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "path to a config file (default: ./config.yaml or <user config dir>/jukebox-driver/config.yaml)")
	bindFlags(opts.v, flags)

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// flagKeys maps each persistent flag to its config key.
var flagKeys = map[string]string{
	"node-url":                   "aptos.node_url",
	"module-name":                "aptos.module_name",
	"struct-name":                "aptos.struct_name",
	"module-address":             "aptos.module_address",
	"chain-id":                   "aptos.chain_id",
	"account-private-key":        "aptos.account_private_key",
	"aptos-cli":                  "aptos.cli_path",
	"max-gas":                    "aptos.max_gas",
	"gas-unit-price":             "aptos.gas_unit_price",
	"spotify-client-id":          "spotify.client_id",
	"spotify-client-secret":      "spotify.client_secret",
	"cache-backend":              "cache.backend",
	"cache-path":                 "cache.path",
	"resolve-votes-threshold-ms": "driver.resolve_votes_threshold_ms",
	"request-timeout":            "driver.request_timeout",
	"submit-timeout":             "driver.submit_timeout",
	"dry-run":                    "driver.dry_run",
	"debug":                      "driver.debug",
	"pushgateway-url":            "metrics.pushgateway_url",
}

// bindFlags registers the flags with the defaults already set on v, so the
// help text shows the effective values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.String("node-url", v.GetString("aptos.node_url"), "Aptos fullnode URL")
	flags.String("module-name", v.GetString("aptos.module_name"), "name of the jukebox Move module")
	flags.String("struct-name", v.GetString("aptos.struct_name"), "name of the jukebox resource struct")
	flags.String("module-address", "", "address the module is published at (default: the account address)")
	flags.Uint8("chain-id", 0, "expected chain id (default: whatever the node reports)")
	flags.String("account-private-key", "", "ed25519 private key of the account that owns the jukebox")
	flags.String("aptos-cli", v.GetString("aptos.cli_path"), "path to the aptos CLI used for submission")
	flags.Uint64("max-gas", v.GetUint64("aptos.max_gas"), "max gas for resolve_votes")
	flags.Uint64("gas-unit-price", v.GetUint64("aptos.gas_unit_price"), "gas unit price for resolve_votes")
	flags.String("spotify-client-id", "", "Spotify client id")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("cache-backend", v.GetString("cache.backend"), "cache backend (file|bolt|s3)")
	flags.String("cache-path", v.GetString("cache.path"), "cache location for the file and bolt backends")
	flags.Uint64("resolve-votes-threshold-ms", v.GetUint64("driver.resolve_votes_threshold_ms"), "resolve votes when less than this many ms of the song are left")
	flags.Duration("request-timeout", v.GetDuration("driver.request_timeout"), "timeout for each remote read")
	flags.Duration("submit-timeout", v.GetDuration("driver.submit_timeout"), "timeout for submitting resolve_votes")
	flags.Bool("dry-run", false, "decide but never submit")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("pushgateway-url", "", "Prometheus Pushgateway to push run metrics to")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func (o *RootOptions) loadConfig() (domain.Config, error) {
	if o.ConfigFile != "" {
		o.v.SetConfigFile(o.ConfigFile)
	}
	return config.NewViperConfigService(o.v).Load()
}

// Execute runs the root command and returns the process exit code. Failures
// are logged once here.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		event := logger.Log.Error().Err(err)
		var derr *domain.Error
		if errors.As(err, &derr) {
			event = event.Str("kind", string(derr.Kind)).Str("step", derr.Step)
		}
		event.Msg("jukebox-driver failed")
		return 1
	}
	return 0
}
