package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdeb.transit/board/internal/feed"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSTMAPIKey, EnvExoToken, EnvWeatherAPIKey, EnvAdminAPIKeys, EnvTimezone, EnvPort} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "America/Montreal", cfg.Location.String())
	assert.Len(t, cfg.Bus.Combos, 5)
	assert.Equal(t, []string{"MTL7D", "MTL7B", "MTL59A", "MTL59C"}, cfg.Rail.Stops)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Empty(t, cfg.Secrets.AdminAPIKeys)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yml", `
server:
  port: 8080
  env: production
timezone: America/Toronto
bus:
  combos:
    - {route: "171", stop: "50270", direction: "Est", location: "Collège"}
rail:
  stops: ["MTL7D"]
  static:
    dir: ""
    zip: https://exo.quebec/gtfs.zip
    refresh: 24h
`)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "America/Toronto", cfg.Location.String())
	require.Len(t, cfg.Bus.Combos, 1)
	assert.Equal(t, "Collège", cfg.Bus.Combos[0].Location)
	assert.Equal(t, []string{"MTL7D"}, cfg.Rail.Stops)
	assert.Equal(t, 24*time.Hour, cfg.Rail.Static.Refresh)
	assert.Equal(t, "12", cfg.Rail.RouteLabels["4"], "untouched sections keep their defaults")
	assert.Equal(t, "data/stm", cfg.Bus.Static.Dir)
}

func TestLoadSecretsFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{EnvSTMAPIKey, EnvExoToken, EnvAdminAPIKeys} {
		require.NoError(t, os.Unsetenv(k))
	}
	env := writeFile(t, ".env", "STM_API_KEY=stm-secret\nEXO_TOKEN=exo-secret\nADMIN_API_KEYS= a , b ,\n")
	t.Cleanup(func() {
		for _, k := range []string{EnvSTMAPIKey, EnvExoToken, EnvAdminAPIKeys} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load("", env)
	require.NoError(t, err)

	assert.Equal(t, "stm-secret", cfg.Secrets.STMAPIKey)
	assert.Equal(t, "exo-secret", cfg.Secrets.ExoToken)
	assert.Equal(t, []string{"a", "b"}, cfg.Secrets.AdminAPIKeys)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimezone, "UTC")
	t.Setenv(EnvPort, "9090")

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, 9090, cfg.Server.Port)

	t.Setenv(EnvPort, "http")
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server: {port: -1}"},
		{"bad env", "server: {env: qa}"},
		{"bad timezone", "timezone: Mars/Olympus"},
		{"no combos", "bus: {combos: []}"},
		{"combo without stop", `bus: {combos: [{route: "171", direction: "Est", location: "x"}]}`},
		{"bad feed url", "rail: {feeds: {trip_updates: not a url}}"},
		{"bad alerts format", "bus: {feeds: {alerts_format: xml}}"},
		{"no static source", "rail: {static: {dir: \"\"}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yml", tt.body), filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"), filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFeedsCarryCredentials(t *testing.T) {
	cfg := Default()
	cfg.Secrets = Secrets{STMAPIKey: "k", ExoToken: "t"}

	feeds := cfg.Feeds()

	assert.Equal(t, "apiKey", feeds.BusTripUpdates.AuthHeader)
	assert.Equal(t, "k", feeds.BusVehicles.AuthValue)
	assert.Equal(t, feed.FormatSTMAlertsJSON, feeds.BusAlerts.Format)
	assert.Equal(t, feed.KindAlerts, feeds.BusAlerts.Kind)

	assert.Equal(t, "token", feeds.RailTripUpdates.AuthQuery)
	assert.Equal(t, "t", feeds.RailAlerts.AuthValue)
	assert.Equal(t, feed.FormatProtobuf, feeds.RailAlerts.Format)
	assert.Equal(t, "exo", feeds.RailVehicles.Agency)
}

func TestComponentBuilders(t *testing.T) {
	cfg := Default()
	cfg.Secrets.WeatherAPIKey = "w"

	combos := cfg.BusCombos()
	require.Len(t, combos, 5)
	assert.Equal(t, "62374", combos[1].Stop)
	for _, c := range combos {
		assert.False(t, c.Route == "164" && c.Stop == "62374", "164 does not serve the Ouest stop")
	}

	rail := cfg.RailStrategy(nil)
	assert.Equal(t, "Mascouche", rail.Directions["6"]["1"])
	assert.Equal(t, 2, rail.AtStopMinutes)

	w := cfg.WeatherClient()
	assert.Equal(t, "w", w.APIKey)
	assert.Equal(t, 5*time.Minute, w.TTL)

	assert.NotNil(t, cfg.AlertFilter())

	static := cfg.StaticSources()
	require.Len(t, static, 2)
	assert.Equal(t, "stm", static[0].Agency)
	assert.True(t, static[0].UseRouteShortName)
	assert.Equal(t, "data/exo", static[1].Dir)
}
