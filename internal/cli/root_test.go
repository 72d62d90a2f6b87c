package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testPrivateKey = "0x" + strings.Repeat("11", 32)

// isolate keeps config files from the developer's machine out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func credentialArgs() []string {
	return []string{
		"--account-private-key", testPrivateKey,
		"--spotify-client-id", "client-id",
		"--spotify-client-secret", "client-secret",
	}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "jukebox-driver", cmd.Use)
	assert.Contains(t, cmd.Long, "resolve_votes")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{{"run"}, {"config"}, {"cache", "show"}}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	defaults := map[string]string{
		"node-url":                   "https://fullnode.testnet.aptoslabs.com",
		"module-name":                "jukebox",
		"struct-name":                "Jukebox",
		"module-address":             "",
		"chain-id":                   "0",
		"account-private-key":        "",
		"cache-path":                 "/tmp/aptos-infinite-jukebox-driver-cache.json",
		"cache-backend":              "file",
		"resolve-votes-threshold-ms": "20000",
		"request-timeout":            "10s",
		"submit-timeout":             "1m30s",
		"max-gas":                    "500000",
		"gas-unit-price":             "200",
		"debug":                      "false",
		"dry-run":                    "false",
	}

	for name, def := range defaults {
		t.Run(name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(name)
			require.NotNil(t, flag)
			assert.Equal(t, def, flag.DefValue)
		})
	}

	for name := range flagKeys {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s is bound but not registered", name)
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("JUKEBOX_DRIVER_SUBMIT_TIMEOUT", "2m")

	args := append([]string{"config", "--resolve-votes-threshold-ms", "15000"}, credentialArgs()...)
	stdout, _, err := execute(t, args...)
	require.NoError(t, err)

	var cfg domain.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, uint64(15000), cfg.Driver.ResolveVotesThresholdMs)
	assert.Equal(t, 2*time.Minute, cfg.Driver.SubmitTimeout)
	assert.Equal(t, "client-id", cfg.Spotify.ClientID)
	assert.Equal(t, "********", cfg.Spotify.ClientSecret)
	assert.Equal(t, "********", cfg.Aptos.PrivateKey)
	assert.NotContains(t, stdout, testPrivateKey)
}

func TestConfigCommand_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "driver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aptos:\n  module_name: radio\n"), 0o600))

	args := append([]string{"config", "--config", path}, credentialArgs()...)
	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "module_name: radio")
}

func TestConfigCommand_Invalid(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "config")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "aptos.account_private_key is required")
}

func TestCacheShow(t *testing.T) {
	dir := isolate(t)
	cachePath := filepath.Join(dir, "cache.json")
	require.NoError(t, os.WriteFile(cachePath,
		[]byte(`{"spotify_access_token":"BQDsecret-token","track_durations":{"track1":180000}}`), 0o600))

	args := append([]string{"cache", "show", "--cache-path", cachePath}, credentialArgs()...)
	stdout, _, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, stdout, `"spotify_access_token": "BQDsec…"`)
	assert.Contains(t, stdout, `"track1": 180000`)
	assert.NotContains(t, stdout, "BQDsecret-token")
}

func TestCacheShow_Absent(t *testing.T) {
	dir := isolate(t)

	args := append([]string{"cache", "show", "--cache-path", filepath.Join(dir, "missing.json")}, credentialArgs()...)
	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "null\n", stdout)
}

func TestRunCommand_NotDue(t *testing.T) {
	dir := isolate(t)
	cachePath := filepath.Join(dir, "cache.json")

	spotifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"tok-123456789","token_type":"Bearer","expires_in":3600}`)
		case "/v1/tracks/track1":
			assert.Equal(t, "Bearer tok-123456789", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"id":"track1","duration_ms":180000}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer spotifyServer.Close()

	startMicros := time.Now().UnixMicro()
	nodeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/accounts/") || !strings.Contains(r.URL.Path, "::jukebox::Jukebox") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"type":"x","data":{"inner":{"song_queue":[{"track_id":"track1"}],"time_to_start_playing":"%d"}}}`, startMicros)
	}))
	defer nodeServer.Close()

	var mu sync.Mutex
	var pushed []string
	pushServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		pushed = append(pushed, r.URL.Path)
	}))
	defer pushServer.Close()

	t.Setenv("JUKEBOX_SPOTIFY_TOKEN_URL", spotifyServer.URL+"/api/token")
	t.Setenv("JUKEBOX_SPOTIFY_API_URL", spotifyServer.URL+"/v1")

	args := append([]string{
		"run",
		"--node-url", nodeServer.URL,
		"--cache-path", cachePath,
		"--pushgateway-url", pushServer.URL,
		"--aptos-cli", filepath.Join(dir, "no-such-aptos"),
	}, credentialArgs()...)
	_, stderr, err := execute(t, args...)
	require.NoError(t, err, stderr)

	assert.Contains(t, stderr, "run_id")
	assert.Contains(t, stderr, "Run complete")
	assert.NotContains(t, stderr, "tok-123456789")

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"spotify_access_token":"tok-123456789","track_durations":{"track1":180000}}`, string(data))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/metrics/job/jukebox_driver"}, pushed)
}
