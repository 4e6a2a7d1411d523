// Package appconf loads the service configuration from a YAML file, overlays
// secrets from the environment and validates the result.
//
// The zero-file configuration is Default, which reproduces the
// Bois-de-Boulogne deployment.
package appconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read after the optional .env file is loaded.
const (
	EnvSTMAPIKey     = "STM_API_KEY"
	EnvExoToken      = "EXO_TOKEN"
	EnvWeatherAPIKey = "WEATHER_API_KEY"
	EnvAdminAPIKeys  = "ADMIN_API_KEYS"
	EnvTimezone      = "TZ"
	EnvPort          = "PORT"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int    `yaml:"port" validate:"gt=0,lte=65535"`
	Env  string `yaml:"env" validate:"oneof=development staging production"`
	// RateLimit is the number of requests per second allowed per client.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// StaticSource locates one agency's static feed. Dir points at a directory
// of .txt tables; Zip is a local archive or an http(s) URL.
type StaticSource struct {
	Dir string `yaml:"dir" validate:"required_without=Zip"`
	Zip string `yaml:"zip"`
	// Refresh reloads a remote zip on this period, e.g. "24h".
	Refresh time.Duration `yaml:"refresh" validate:"gte=0"`
}

// FeedAuth says where the agency credential goes on each request.
type FeedAuth struct {
	Header string `yaml:"header"`
	Query  string `yaml:"query"`
}

// AgencyFeeds are the real-time endpoints of one agency.
type AgencyFeeds struct {
	TripUpdates      string   `yaml:"trip_updates" validate:"omitempty,url"`
	VehiclePositions string   `yaml:"vehicle_positions" validate:"omitempty,url"`
	Alerts           string   `yaml:"alerts" validate:"omitempty,url"`
	AlertsFormat     string   `yaml:"alerts_format" validate:"omitempty,oneof=protobuf stm-json"`
	Auth             FeedAuth `yaml:"auth"`
}

// FetchConfig tunes upstream requests.
type FetchConfig struct {
	TimeoutMS  int    `yaml:"timeout_ms" validate:"gt=0"`
	MaxRetries uint64 `yaml:"max_retries" validate:"lte=10"`
}

// Combo is one tracked (route, stop, direction) bus combination.
type Combo struct {
	Route     string `yaml:"route" validate:"required"`
	Stop      string `yaml:"stop" validate:"required"`
	Direction string `yaml:"direction" validate:"required"`
	Location  string `yaml:"location" validate:"required"`
}

// BusAlerts lists what a bus alert has to reference to be shown.
type BusAlerts struct {
	Routes     []string          `yaml:"routes" validate:"required,min=1"`
	Directions []string          `yaml:"directions" validate:"required,min=1"`
	StopCodes  []string          `yaml:"stop_codes" validate:"required,min=1"`
	StopNames  map[string]string `yaml:"stop_names"`
}

// BusConfig configures the stop-keyed bus board.
type BusConfig struct {
	Static        StaticSource `yaml:"static"`
	Feeds         AgencyFeeds  `yaml:"feeds"`
	Combos        []Combo      `yaml:"combos" validate:"required,min=1,dive"`
	AtStopMinutes int          `yaml:"at_stop_minutes" validate:"gte=0"`
	Alerts        BusAlerts    `yaml:"alerts"`
}

// RailConfig configures the trip-keyed rail board.
type RailConfig struct {
	Static        StaticSource                 `yaml:"static"`
	Feeds         AgencyFeeds                  `yaml:"feeds"`
	Stops         []string                     `yaml:"stops" validate:"required,min=1,dive,required"`
	RouteLabels   map[string]string            `yaml:"route_labels"`
	Directions    map[string]map[string]string `yaml:"directions"`
	StopNames     map[string]string            `yaml:"stop_names"`
	AlertLabels   map[string]string            `yaml:"alert_labels"`
	AtStopMinutes int                          `yaml:"at_stop_minutes" validate:"gte=0"`
	// NoServiceFile lists closure days, one YYYY-MM-DD per line.
	NoServiceFile string `yaml:"no_service_file"`
}

// WeatherConfig configures the WeatherAPI client.
type WeatherConfig struct {
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Query      string `yaml:"query"`
	Lang       string `yaml:"lang"`
	TTLSeconds int    `yaml:"ttl_seconds" validate:"gte=0"`
}

// Secrets never come from the YAML file.
type Secrets struct {
	STMAPIKey     string
	ExoToken      string
	WeatherAPIKey string
	AdminAPIKeys  []string
}

// Config is the root configuration.
type Config struct {
	Server       ServerConfig  `yaml:"server"`
	Timezone     string        `yaml:"timezone" validate:"required,timezone"`
	MessagesFile string        `yaml:"messages_file" validate:"required"`
	Fetch        FetchConfig   `yaml:"fetch"`
	Bus          BusConfig     `yaml:"bus"`
	Rail         RailConfig    `yaml:"rail"`
	Weather      WeatherConfig `yaml:"weather"`

	Secrets  Secrets        `yaml:"-" validate:"-"`
	Location *time.Location `yaml:"-" validate:"-"`
}

// Load reads path over Default, applies the environment and validates.
// An empty path skips the file. Missing env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Secrets.STMAPIKey = os.Getenv(EnvSTMAPIKey)
	c.Secrets.ExoToken = os.Getenv(EnvExoToken)
	c.Secrets.WeatherAPIKey = os.Getenv(EnvWeatherAPIKey)
	c.Secrets.AdminAPIKeys = splitList(os.Getenv(EnvAdminAPIKeys))

	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the struct tags and resolves the service time zone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// FetchTimeout is the per-request upstream timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutMS) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
