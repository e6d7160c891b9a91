package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/config"
	"github.com/academiagorila/bjj-schedule/internal/fetch"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/notifier"
	"github.com/academiagorila/bjj-schedule/internal/scraper"
	"github.com/academiagorila/bjj-schedule/internal/server"
	"github.com/academiagorila/bjj-schedule/internal/service"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitEmpty means the command succeeded but the club has nothing scheduled.
	ExitEmpty = 2
)

// Version is reported by --version; main sets it from the build.
var Version = "dev"

// errEmptySchedule is returned after the "nothing scheduled" message has
// been printed, so Execute can exit with ExitEmpty.
var errEmptySchedule = errors.New("empty schedule")

var (
	flagEnvFile  string
	flagBaseURL  string
	flagLogLevel string
	flagVerbose  bool

	flagAddr      string
	flagRateLimit string
	flagSweep     string

	flagFormat  string
	flagSort    string
	flagClub    string
	flagType    string
	flagChannel string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bjj-schedule",
		Short: "Match schedules of Academia Gorila competitors on martialmatch.com",
		Long: `A tool to look up when a club's competitors fight at a martialmatch.com
tournament. It merges the starting lists with the mat schedule, grouped by day.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", config.DefaultEnvFile, "Optional .env file with settings")
	cmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "martialmatch.com base URL (overrides MM_BASE_URL)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(),
		newTournamentsCmd(),
		newClubsCmd(),
		newScheduleCmd(),
		newAnnounceCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&flagRateLimit, "rate-limit", "", "Per-IP limit for upstream routes, e.g. 60-M (overrides RATE_LIMIT)")
	cmd.Flags().StringVar(&flagSweep, "sweep", "", "Cron spec for dropping expired cache entries (overrides CACHE_SWEEP)")
	return cmd
}

func newTournamentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "List active and archived tournaments",
		Args:  cobra.NoArgs,
		RunE:  runTournaments,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByListing), "Sort order: listing, name or id")
	return cmd
}

func newClubsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clubs",
		Short: "List the supported clubs",
		Args:  cobra.NoArgs,
		RunE:  runClubs,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule EVENT_ID",
		Short: "Print a club's merged schedule for a tournament",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedule,
	}
	cmd.Flags().StringVar(&flagClub, "club", "", "Club ID (see 'clubs') (required)")
	cmd.Flags().StringVar(&flagType, "type", string(club.Planned), "Schedule type: planned or real")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.MarkFlagRequired("club")
	return cmd
}

func newAnnounceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "announce EVENT_ID",
		Short: "Post a club's schedule, one message per day",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnnounce,
	}
	cmd.Flags().StringVar(&flagClub, "club", "", "Club ID (see 'clubs') (required)")
	cmd.Flags().StringVar(&flagType, "type", string(club.Planned), "Schedule type: planned or real")
	cmd.Flags().StringVar(&flagChannel, "channel", "dry-run", "Where to post: dry-run, twitter or telegram")
	cmd.MarkFlagRequired("club")
	return cmd
}

// loadConfig reads settings and applies the persistent flag overrides. It
// also installs the default logger, writing to logOut.
func loadConfig(cmd *cobra.Command, logOut io.Writer) (config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = strings.TrimRight(flagBaseURL, "/")
	}
	if cmd.Flags().Changed("log-level") {
		level, err := logger.ParseLevel(flagLogLevel)
		if err != nil {
			return config.Config{}, fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	if flagVerbose {
		cfg.LogLevel = logger.LevelDebug
	}

	logger.SetDefault(logger.New(cfg.LogLevel, logOut))
	return cfg, nil
}

// newPipeline builds the scraper and the caching service from cfg.
func newPipeline(cfg config.Config) (*scraper.Scraper, *service.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("loading timezone: %w", err)
	}

	fetcher := fetch.NewWithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})
	scr, err := scraper.New(
		scraper.WithBaseURL(cfg.BaseURL),
		scraper.WithLocation(loc),
		scraper.WithFetcher(fetcher),
	)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(scr, club.Default(), service.Options{
		ParticipantsTTL: cfg.ParticipantsTTL,
		ScheduleTTL:     cfg.ScheduleTTL,
		TournamentsTTL:  cfg.TournamentsTTL,
		CacheSize:       cfg.CacheSize,
	})
	return scr, svc, nil
}

// runServe runs the HTTP API and the cache sweeper until interrupted
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, os.Stdout)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr = flagAddr
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit = flagRateLimit
	}
	if cmd.Flags().Changed("sweep") {
		cfg.CacheSweep = flagSweep
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scr, svc, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(svc, server.Options{
		RateLimit: cfg.RateLimit,
		Location:  scr.Location(),
	})
	if err != nil {
		return err
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.CacheSweep, func() { svc.Sweep() }); err != nil {
		return fmt.Errorf("scheduling cache sweep %q: %w", cfg.CacheSweep, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting bjj-schedule", logger.Fields{
		"addr":        cfg.HTTPAddr,
		"base_url":    cfg.BaseURL,
		"rate_limit":  cfg.RateLimit,
		"cache_sweep": cfg.CacheSweep,
	})
	return srv.ListenAndServe(ctx, cfg.HTTPAddr)
}

// runTournaments prints the tournament listings
func runTournaments(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	_, svc, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	tournaments, err := svc.Tournaments(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching tournaments: %w", err)
	}
	sortTournaments(tournaments.Active, order)
	sortTournaments(tournaments.Archived, order)

	return WriteTournaments(cmd.OutOrStdout(), tournaments, format)
}

// runClubs prints the club allow-list
func runClubs(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}
	return WriteClubs(cmd.OutOrStdout(), club.Default().All(), format)
}

// runSchedule prints one club's merged schedule
func runSchedule(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	_, svc, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	eventID := strings.TrimSpace(args[0])
	result, err := svc.ClubSchedule(cmd.Context(), eventID, flagClub, flagType)
	if err != nil {
		return describeError(err, eventID)
	}
	c, err := svc.ResolveClub(flagClub)
	if err != nil {
		return err
	}

	if err := WriteSchedule(cmd.OutOrStdout(), eventID, c, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if result.Schedule.Empty() {
		return errEmptySchedule
	}
	return nil
}

// runAnnounce posts one message per day of a club's schedule
func runAnnounce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	n, limit, err := newNotifier(cmd, cfg, flagChannel)
	if err != nil {
		return err
	}

	_, svc, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	eventID := strings.TrimSpace(args[0])
	result, err := svc.ClubSchedule(cmd.Context(), eventID, flagClub, flagType)
	if err != nil {
		return describeError(err, eventID)
	}
	if result.Schedule.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return errEmptySchedule
	}
	c, err := svc.ResolveClub(flagClub)
	if err != nil {
		return err
	}

	messages := notifier.FormatSchedule(c, result.Schedule, limit)
	if err := n.Notify(cmd.Context(), messages); err != nil {
		return fmt.Errorf("announcing schedule: %w", err)
	}
	logger.Info("Announced schedule", logger.Fields{
		"event_id": eventID,
		"club_id":  c.ID,
		"channel":  flagChannel,
		"messages": len(messages),
	})
	return nil
}

// newNotifier picks the channel implementation and its message limit.
func newNotifier(cmd *cobra.Command, cfg config.Config, channel string) (notifier.Notifier, int, error) {
	switch strings.ToLower(channel) {
	case "dry-run":
		return notifier.NewDryRunNotifier(cmd.OutOrStdout()), notifier.TwitterLimit, nil
	case "twitter":
		n, err := notifier.NewTwitterNotifier(cfg.Twitter)
		if err != nil {
			return nil, 0, err
		}
		return n, notifier.TwitterLimit, nil
	case "telegram":
		n, err := notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, 0, err
		}
		return n, notifier.TelegramLimit, nil
	default:
		return nil, 0, fmt.Errorf("invalid channel: %s (must be 'dry-run', 'twitter' or 'telegram')", channel)
	}
}

// describeError turns service errors into messages for a terminal user.
func describeError(err error, eventID string) error {
	switch {
	case errors.Is(err, scraper.ErrEventNotFound):
		return fmt.Errorf("%s: %s", service.EventNotFoundMessage, eventID)
	case errors.Is(err, service.ErrUnknownClub):
		return fmt.Errorf("%w (run 'bjj-schedule clubs' for the list)", err)
	default:
		return err
	}
}

func parseFormat(raw string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	names := make([]string, len(allowed))
	for i, f := range allowed {
		if f == format {
			return format, nil
		}
		names[i] = "'" + string(f) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", raw, strings.Join(names, ", "))
}

// Execute runs the CLI
func Execute() {
	ctx := context.Background()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, errEmptySchedule) {
			os.Exit(ExitEmpty)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
