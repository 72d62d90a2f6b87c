package domain

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Aptos   AptosConfig   `mapstructure:"aptos" yaml:"aptos"`
	Spotify SpotifyConfig `mapstructure:"spotify" yaml:"spotify"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Driver  DriverConfig  `mapstructure:"driver" yaml:"driver"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type AptosConfig struct {
	NodeURL    string `mapstructure:"node_url" yaml:"node_url"`
	PrivateKey string `mapstructure:"account_private_key" yaml:"account_private_key"`
	ModuleName string `mapstructure:"module_name" yaml:"module_name"`
	StructName string `mapstructure:"struct_name" yaml:"struct_name"`
	// Empty means the module is published at the account's own address.
	ModuleAddress string `mapstructure:"module_address" yaml:"module_address"`
	// Zero means ask the node.
	ChainID      uint8  `mapstructure:"chain_id" yaml:"chain_id"`
	CLIPath      string `mapstructure:"cli_path" yaml:"cli_path"`
	MaxGas       uint64 `mapstructure:"max_gas" yaml:"max_gas"`
	GasUnitPrice uint64 `mapstructure:"gas_unit_price" yaml:"gas_unit_price"`
}

type SpotifyConfig struct {
	ClientID      string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret  string `mapstructure:"client_secret" yaml:"client_secret"`
	TokenURL      string `mapstructure:"token_url" yaml:"token_url"`
	APIURL        string `mapstructure:"api_url" yaml:"api_url"`
	CanaryTrackID string `mapstructure:"canary_track_id" yaml:"canary_track_id"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend"`
	Path    string        `mapstructure:"path" yaml:"path"`
	S3      S3CacheConfig `mapstructure:"s3" yaml:"s3"`
}

type S3CacheConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Key             string `mapstructure:"key" yaml:"key"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Region          string `mapstructure:"region" yaml:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
}

type DriverConfig struct {
	ResolveVotesThresholdMs uint64        `mapstructure:"resolve_votes_threshold_ms" yaml:"resolve_votes_threshold_ms"`
	RequestTimeout          time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	SubmitTimeout           time.Duration `mapstructure:"submit_timeout" yaml:"submit_timeout"`
	DryRun                  bool          `mapstructure:"dry_run" yaml:"dry_run"`
	Debug                   bool          `mapstructure:"debug" yaml:"debug"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
	Job            string `mapstructure:"job" yaml:"job"`
}

const (
	CacheBackendFile = "file"
	CacheBackendBolt = "bolt"
	CacheBackendS3   = "s3"
)

// Validate reports every problem at once as a CONFIG_INVALID error.
func (c Config) Validate() error {
	var errs []error
	if c.Aptos.PrivateKey == "" {
		errs = append(errs, errors.New("aptos.account_private_key is required"))
	}
	if c.Aptos.NodeURL == "" {
		errs = append(errs, errors.New("aptos.node_url is required"))
	}
	if c.Aptos.ModuleName == "" || c.Aptos.StructName == "" {
		errs = append(errs, errors.New("aptos.module_name and aptos.struct_name are required"))
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("spotify.client_id and spotify.client_secret are required"))
	}
	if c.Driver.ResolveVotesThresholdMs == 0 {
		errs = append(errs, errors.New("driver.resolve_votes_threshold_ms must be positive"))
	}
	if c.Driver.RequestTimeout <= 0 || c.Driver.SubmitTimeout <= 0 {
		errs = append(errs, errors.New("driver.request_timeout and driver.submit_timeout must be positive"))
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBolt:
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("cache.path is required for the %s backend", c.Cache.Backend))
		}
	case CacheBackendS3:
		if c.Cache.S3.Bucket == "" || c.Cache.S3.Key == "" {
			errs = append(errs, errors.New("cache.s3.bucket and cache.s3.key are required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if len(errs) > 0 {
		return NewError(KindConfigInvalid, StepConfig, errors.Join(errs...))
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Aptos.PrivateKey = mask(c.Aptos.PrivateKey)
	c.Spotify.ClientSecret = mask(c.Spotify.ClientSecret)
	c.Cache.S3.SecretAccessKey = mask(c.Cache.S3.SecretAccessKey)
	return c
}
