package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"

	"github.com/spf13/viper"
)

const EnvPrefix = "JUKEBOX"

type ViperConfigService struct {
	v *viper.Viper
}

// NewViperConfigService registers defaults, environment lookup and config file
// locations on v. Flags are bound by the caller before Load.
func NewViperConfigService(v *viper.Viper) ports.ConfigService {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	configDir, err := os.UserConfigDir()
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Could not find user config directory, using current directory")
	} else {
		v.AddConfigPath(filepath.Join(configDir, "jukebox-driver"))
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	return &ViperConfigService{v: v}
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("aptos.node_url", "https://fullnode.testnet.aptoslabs.com")
	v.SetDefault("aptos.module_name", "jukebox")
	v.SetDefault("aptos.struct_name", "Jukebox")
	v.SetDefault("aptos.module_address", "")
	v.SetDefault("aptos.chain_id", 0)
	v.SetDefault("aptos.cli_path", "aptos")
	v.SetDefault("aptos.max_gas", 500000)
	v.SetDefault("aptos.gas_unit_price", 200)

	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.api_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.canary_track_id", "0H8XeaJunhvpBdBFIYi6Sh")

	v.SetDefault("cache.backend", domain.CacheBackendFile)
	v.SetDefault("cache.path", "/tmp/aptos-infinite-jukebox-driver-cache.json")
	v.SetDefault("cache.s3.key", "jukebox-driver/cache.json")
	v.SetDefault("cache.s3.region", "us-east-1")

	v.SetDefault("driver.resolve_votes_threshold_ms", 20000)
	v.SetDefault("driver.request_timeout", 10*time.Second)
	v.SetDefault("driver.submit_timeout", 90*time.Second)
	v.SetDefault("driver.dry_run", false)
	v.SetDefault("driver.debug", false)

	v.SetDefault("metrics.job", "jukebox_driver")

	// Keys without defaults still need registering for env lookup on Unmarshal.
	for _, key := range []string{
		"aptos.account_private_key",
		"spotify.client_id",
		"spotify.client_secret",
		"cache.s3.bucket",
		"cache.s3.endpoint",
		"cache.s3.access_key_id",
		"cache.s3.secret_access_key",
		"metrics.pushgateway_url",
	} {
		_ = v.BindEnv(key)
	}
}

func (s *ViperConfigService) Load() (domain.Config, error) {
	var cfg domain.Config

	if err := s.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return cfg, domain.NewError(domain.KindConfigInvalid, domain.StepConfig, err)
		}
		logger.Log.Debug().Msg("Config file not found, using flags, environment and defaults")
	} else {
		logger.Log.Debug().Str("file", s.v.ConfigFileUsed()).Msg("Loaded config file")
	}

	if err := s.v.Unmarshal(&cfg); err != nil {
		return cfg, domain.NewError(domain.KindConfigInvalid, domain.StepConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
