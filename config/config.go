package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLat = 51.5074
	DefaultLon = -0.1278
)

type Config struct {
	Audio        AudioConfig        `yaml:"audio"`
	Speechmatics SpeechmaticsConfig `yaml:"speechmatics"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Anthropic    AnthropicConfig    `yaml:"anthropic"`
	Gemini       GeminiConfig       `yaml:"gemini"`
	Recommender  RecommenderConfig  `yaml:"recommender"`
	Weather      WeatherConfig      `yaml:"weather"`
	Geocode      GeocodeConfig      `yaml:"geocode"`
	Course       CourseConfig       `yaml:"course"`
	Session      SessionConfig      `yaml:"session"`
	TTS          TTSConfig          `yaml:"tts"`
	Pushover     PushoverConfig     `yaml:"pushover"`
	Cache        CacheConfig        `yaml:"cache"`
	Log          LogConfig          `yaml:"log"`
}

type AudioConfig struct {
	// Source is one of speechmatics, microphone, http, file, console or scripted.
	Source      string `yaml:"source"`
	HTTPAddr    string `yaml:"http_addr"`
	AuthToken   string `yaml:"auth_token"`
	FileDir     string `yaml:"file_dir"`
	FileOnce    bool   `yaml:"file_once"`
	SampleRate  int    `yaml:"sample_rate"`
	ScriptPath  string `yaml:"script_path"`
	ScriptDelay string `yaml:"script_delay"`
}

type SpeechmaticsConfig struct {
	APIKey                string  `yaml:"api_key"`
	URL                   string  `yaml:"url"`
	Language              string  `yaml:"language"`
	MaxDelay              float64 `yaml:"max_delay"`
	OperatingPoint        string  `yaml:"operating_point"`
	EndOfUtteranceSilence float64 `yaml:"end_of_utterance_silence"`
	TTSURL                string  `yaml:"tts_url"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	// BaseURL points at a compatible proxy; empty means the public API.
	BaseURL string `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type RecommenderConfig struct {
	// Provider is openai, anthropic, gemini or rules.
	Provider string `yaml:"provider"`
	// Fallbacks are tried in order when the provider fails.
	Fallbacks []string `yaml:"fallbacks"`
}

type WeatherConfig struct {
	BaseURL         string `yaml:"base_url"`
	RefreshInterval string `yaml:"refresh_interval"`
}

type GeocodeConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type CourseConfig struct {
	Name    string  `yaml:"name"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Bearing int     `yaml:"bearing"`
}

type SessionConfig struct {
	Handicap         *int   `yaml:"handicap"`
	HistorySize      int    `yaml:"history_size"`
	SilenceTimeout   string `yaml:"silence_timeout"`
	DistanceBinYards int    `yaml:"distance_bin_yards"`
	StatisticsPath   string `yaml:"statistics_path"`
}

type TTSConfig struct {
	// Provider is none or speechmatics.
	Provider string `yaml:"provider"`
	// Output is speaker or file.
	Output    string `yaml:"output"`
	OutputDir string `yaml:"output_dir"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type CacheConfig struct {
	// Backend is memory or redis.
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env (never overriding the process environment), then the YAML
// file at path with ${VAR} expansion. A missing file is only an error when the
// path was given explicitly. Overrides run after defaults and before validation.
func Load(path string, explicit bool, overrides ...func(*Config)) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills unset fields from the environment, for setups without a config file.
func (c *Config) applyEnv() error {
	setString(&c.Speechmatics.APIKey, "SPEECHMATICS_API_KEY")
	setString(&c.Speechmatics.TTSURL, "SPEECHMATICS_TTS_URL")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Pushover.Token, "PUSHOVER_TOKEN")
	setString(&c.Pushover.UserKey, "PUSHOVER_USER_KEY")
	c.Log.Level = strings.ToLower(c.Log.Level)

	if c.Course.Lat == 0 && c.Course.Lon == 0 {
		lat, err := envFloat("COURSE_LAT")
		if err != nil {
			return err
		}
		lon, err := envFloat("COURSE_LON")
		if err != nil {
			return err
		}
		c.Course.Lat, c.Course.Lon = lat, lon
	}
	if c.Session.DistanceBinYards == 0 {
		if v := os.Getenv("BINS_DISTANCE_YARDS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid BINS_DISTANCE_YARDS %q: %w", v, err)
			}
			c.Session.DistanceBinYards = n
		}
	}
	if c.TTS.Provider == "" && envBool("TTS_ENABLED") {
		c.TTS.Provider = "speechmatics"
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		if c.Speechmatics.APIKey != "" {
			c.Audio.Source = "speechmatics"
		} else {
			c.Audio.Source = "console"
		}
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.ScriptDelay == "" {
		c.Audio.ScriptDelay = "100ms"
	}
	if c.Speechmatics.Language == "" {
		c.Speechmatics.Language = "en"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Recommender.Provider == "" {
		if c.OpenAI.APIKey != "" {
			c.Recommender.Provider = "openai"
		} else {
			c.Recommender.Provider = "rules"
		}
	}
	if c.Weather.RefreshInterval == "" {
		c.Weather.RefreshInterval = "5m"
	}
	if c.Geocode.UserAgent == "" {
		c.Geocode.UserAgent = "golfcaddie/1.0"
	}
	if c.Course.Lat == 0 && c.Course.Lon == 0 {
		c.Course.Lat, c.Course.Lon = DefaultLat, DefaultLon
	}
	if c.Session.HistorySize == 0 {
		c.Session.HistorySize = 10
	}
	if c.Session.SilenceTimeout == "" {
		c.Session.SilenceTimeout = "1.2s"
	}
	if c.Session.DistanceBinYards == 0 {
		c.Session.DistanceBinYards = 10
	}
	if c.TTS.Provider == "" {
		c.TTS.Provider = "none"
	}
	if c.TTS.Output == "" {
		c.TTS.Output = "speaker"
	}
	if c.TTS.OutputDir == "" {
		c.TTS.OutputDir = "./replies"
	}
	if c.Cache.Backend == "" {
		if c.Cache.RedisAddr != "" {
			c.Cache.Backend = "redis"
		} else {
			c.Cache.Backend = "memory"
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

var (
	audioSources = map[string]bool{"speechmatics": true, "microphone": true, "http": true, "file": true, "console": true, "scripted": true}
	providers    = map[string]bool{"openai": true, "anthropic": true, "gemini": true, "rules": true}
	logLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if !audioSources[c.Audio.Source] {
		errs = append(errs, fmt.Errorf("audio.source: unknown source %q", c.Audio.Source))
	}
	if c.Audio.Source == "scripted" && c.Audio.ScriptPath == "" {
		errs = append(errs, fmt.Errorf("audio.script_path is required for the scripted source"))
	}
	if (c.Audio.Source == "speechmatics" || c.TTS.Provider == "speechmatics") && c.Speechmatics.APIKey == "" {
		errs = append(errs, fmt.Errorf("speechmatics.api_key is required (SPEECHMATICS_API_KEY)"))
	}

	for _, p := range append([]string{c.Recommender.Provider}, c.Recommender.Fallbacks...) {
		if !providers[p] {
			errs = append(errs, fmt.Errorf("recommender: unknown provider %q", p))
			continue
		}
		if key := c.providerKey(p); key != nil && *key == "" {
			errs = append(errs, fmt.Errorf("recommender %s: %s.api_key is required", p, p))
		}
	}

	if c.TTS.Provider != "none" && c.TTS.Provider != "speechmatics" {
		errs = append(errs, fmt.Errorf("tts.provider: unknown provider %q", c.TTS.Provider))
	}
	if c.TTS.Output != "speaker" && c.TTS.Output != "file" {
		errs = append(errs, fmt.Errorf("tts.output: must be speaker or file, got %q", c.TTS.Output))
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		errs = append(errs, fmt.Errorf("cache.backend: must be memory or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		errs = append(errs, fmt.Errorf("cache.redis_addr is required for the redis backend"))
	}

	if c.Session.DistanceBinYards <= 0 {
		errs = append(errs, fmt.Errorf("session.distance_bin_yards must be positive, got %d", c.Session.DistanceBinYards))
	}
	if c.Session.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("session.history_size must not be negative"))
	}
	if h := c.Session.Handicap; h != nil && (*h < 0 || *h > 54) {
		errs = append(errs, fmt.Errorf("session.handicap must be between 0 and 54, got %d", *h))
	}
	if c.Course.Lat < -90 || c.Course.Lat > 90 || c.Course.Lon < -180 || c.Course.Lon > 180 {
		errs = append(errs, fmt.Errorf("course: invalid coordinates %g,%g", c.Course.Lat, c.Course.Lon))
	}
	if c.Course.Bearing < 0 || c.Course.Bearing >= 360 {
		errs = append(errs, fmt.Errorf("course.bearing must be in [0, 360), got %d", c.Course.Bearing))
	}

	for name, v := range map[string]string{
		"audio.script_delay":       c.Audio.ScriptDelay,
		"weather.refresh_interval": c.Weather.RefreshInterval,
		"session.silence_timeout":  c.Session.SilenceTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if !logLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func (c *Config) providerKey(provider string) *string {
	switch provider {
	case "openai":
		return &c.OpenAI.APIKey
	case "anthropic":
		return &c.Anthropic.APIKey
	case "gemini":
		return &c.Gemini.APIKey
	}
	return nil
}

// Duration parses a validated duration field, returning fallback if it is unset or invalid.
func Duration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func setString(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func envFloat(key string) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
