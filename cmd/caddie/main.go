package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golf-caddie/config"
	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

const usage = `Usage:
  caddie listen [-config path] [-source name] [-script path] [-lat N] [-lon N] [-bearing N] [-handicap N] [-debug]
  caddie weather [-config path] LAT LON BEARING
  caddie ask [flags] "150 yards from the fairway, water left"
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := "listen"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "listen":
		return listen(ctx, args, stdin, stdout)
	case "weather":
		return weather(ctx, args, stdout)
	case "ask":
		return ask(ctx, args, stdout)
	case "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

type options struct {
	configPath string
	source     string
	script     string
	lat, lon   float64
	bearing    int
	handicap   int
	debug      bool
	set        map[string]bool
}

func parseFlags(name string, args []string, withSource bool) (*options, []string, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "config.yaml", "path to config file")
	fs.Float64Var(&o.lat, "lat", config.DefaultLat, "course latitude")
	fs.Float64Var(&o.lon, "lon", config.DefaultLon, "course longitude")
	fs.IntVar(&o.bearing, "bearing", 0, "target bearing in degrees")
	fs.IntVar(&o.handicap, "handicap", -1, "player handicap; the caddie asks when unset")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	if withSource {
		fs.StringVar(&o.source, "source", "", "transcript source (speechmatics, microphone, http, file, console, scripted)")
		fs.StringVar(&o.script, "script", "", "replay a scripted round instead of listening")
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, fs.Args(), nil
}

// load reads the config with explicit flags applied on top.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.set["config"], o.apply)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cfg *config.Config) {
	if o.set["lat"] {
		cfg.Course.Lat = o.lat
	}
	if o.set["lon"] {
		cfg.Course.Lon = o.lon
	}
	if o.set["bearing"] {
		cfg.Course.Bearing = o.bearing
	}
	if o.set["handicap"] && o.handicap >= 0 {
		h := o.handicap
		cfg.Session.Handicap = &h
	}
	if o.set["source"] {
		cfg.Audio.Source = o.source
	}
	if o.set["script"] {
		cfg.Audio.Source = "scripted"
		cfg.Audio.ScriptPath = o.script
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
}

func listen(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, _, err := parseFlags("listen", args, true)
	if err != nil {
		return err
	}
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, os.Stderr)
	a, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	source, err := a.transcriptSource(stdin)
	if err != nil {
		return err
	}
	caddie := a.caddie(source)
	a.locateConfiguredCourse(ctx)
	a.startConditions(ctx)

	logger.Info("starting golf caddie",
		"audio_source", cfg.Audio.Source,
		"recommender", a.recommenderName(),
		"tts", cfg.TTS.Provider,
	)

	if err := caddie.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("caddie: %w", err)
	}
	return nil
}

func ask(ctx context.Context, args []string, stdout io.Writer) error {
	opts, rest, err := parseFlags("ask", args, false)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(rest, " "))
	if text == "" {
		return fmt.Errorf("ask needs the utterance text\n%s", usage)
	}
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, os.Stderr)
	a, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	a.locateConfiguredCourse(ctx)
	_, err = a.caddie(nil).Handle(ctx, text)
	return err
}

func weather(ctx context.Context, args []string, stdout io.Writer) error {
	// Trailing coordinates may be negative, so they are split off before flag parsing.
	flagArgs, coords := args, []string(nil)
	if n := len(args); n >= 3 && allNumbers(args[n-3:]) {
		flagArgs, coords = args[:n-3], args[n-3:]
	}
	opts, rest, err := parseFlags("weather", flagArgs, false)
	if err != nil {
		return err
	}
	rest = append(rest, coords...)
	if len(rest) != 3 {
		return fmt.Errorf("weather needs LAT LON BEARING\n%s", usage)
	}

	lat, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", rest[0], err)
	}
	lon, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", rest[1], err)
	}
	bearing, err := strconv.Atoi(rest[2])
	if err != nil {
		return fmt.Errorf("invalid bearing %q: %w", rest[2], err)
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log, os.Stderr)
	a, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	reading, err := a.weather.CurrentWind(ctx, domain.Coordinates{Lat: lat, Lon: lon})
	if err != nil {
		return fmt.Errorf("fetching wind: %w", err)
	}
	w := golf.ResolveWind(reading, bearing)

	fmt.Fprintf(stdout, "Wind: %s\n", w.Summary)
	fmt.Fprintf(stdout, "Headwind: %.1f m/s\n", oneDecimal(w.HeadwindMS))
	fmt.Fprintf(stdout, "Crosswind: %.1f m/s\n", oneDecimal(w.CrosswindMS))
	return nil
}

func allNumbers(args []string) bool {
	for _, a := range args {
		if _, err := strconv.ParseFloat(a, 64); err != nil {
			return false
		}
	}
	return true
}

// oneDecimal rounds for display and folds -0 into 0.
func oneDecimal(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
