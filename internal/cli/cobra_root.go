package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"pulseboard/internal/api"
	"pulseboard/internal/config"
	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/logging"
)

// RootOptions wires the process surroundings into the root command
type RootOptions struct {
	Out    io.Writer
	ErrOut io.Writer
	Clock  quartz.Clock
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	out    io.Writer
	errOut io.Writer
	clock  quartz.Clock

	configFile string
	report     reportFlags

	config  *config.Config
	logger  slog.Logger
	runtime *api.Runtime
	app     *App
}

type reportFlags struct {
	cardID   string
	mine     bool
	rangeKey string
	estimate float64
	format   string
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(opts RootOptions) *RootCommand {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	root := &RootCommand{
		out:    opts.Out,
		errOut: opts.ErrOut,
		clock:  opts.Clock,
	}

	root.cmd = &cobra.Command{
		Use:   "pb",
		Short: "PulseBoard time tracking",
		Long: `pb records work sessions against cards and reports where the time went.

A card has at most one running session per user. Sessions can be paused and
resumed (at most 10 pause/resume actions per hour by default) and must run
for at least two minutes before they can be stopped.

EXAMPLES:
  pb --user <uuid> start <card-id>         # Start a session on a card
  pb pause 12                              # Pause session 12
  pb resume 12                             # Resume it
  pb stop 12                               # Stop it
  pb current                               # Show the running session
  pb report --card <card-id> --range week  # Hours per day for a card
  pb report --mine --range month --json    # Your last month as JSON
  pb import sessions.csv                   # Carry over finished sessions

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > PB_* environment variables > pulseboard.yaml > defaults

    PB_USER / PB_APPLICATION_USER_ID       Acting user
    PB_DATABASE_DIR                        Database directory (default: ~/.pulseboard)
    PB_DATABASE_FILENAME                   Database filename (default: pulseboard.db)
    PB_TRACKING_MINIMUM_STOP_DURATION      Minimum session length (default: 2m)
    PB_TRACKING_RATE_LIMIT_WINDOW          Pause/resume window (default: 1h)
    PB_TRACKING_RATE_LIMIT_MAX_ACTIONS     Pause/resume actions per window (default: 10)
    PB_ANALYTICS_TIMEZONE                  Report timezone (default: Local)
    PB_APPLICATION_VERBOSE, PB_DEBUG       Debug logging on stderr`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.cmd.SetOut(root.out)
	root.cmd.SetErr(root.errOut)

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// Command exposes the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command with args and releases the core afterwards
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.ExecuteContext(ctx)
	r.shutdown(ctx)
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.StringVar(&r.configFile, "config", "", "Config file (overrides PB_CONFIG)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides PB_DATABASE_DIR)")
	flags.String("db-filename", "", "Database filename (overrides PB_DATABASE_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides PB_DATABASE_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides PB_DATABASE_WRITE_TIMEOUT)")

	// Tracking configuration
	flags.Duration("min-stop", 0, "Minimum session length before stop (overrides PB_TRACKING_MINIMUM_STOP_DURATION)")
	flags.Duration("rate-window", 0, "Pause/resume rate limit window (overrides PB_TRACKING_RATE_LIMIT_WINDOW)")
	flags.Int("rate-limit", 0, "Pause/resume actions per window (overrides PB_TRACKING_RATE_LIMIT_MAX_ACTIONS)")

	// Analytics configuration
	flags.String("timezone", "", "Report timezone (overrides PB_ANALYTICS_TIMEZONE)")
	flags.Int("workday-start", 0, "First hour of the day report (overrides PB_ANALYTICS_WORKDAY_START_HOUR)")

	// Application configuration
	flags.String("user", "", "Acting user ID (overrides PB_USER)")
	flags.Bool("json", false, "Print results as JSON (overrides PB_APPLICATION_OUTPUT_JSON)")
	flags.Duration("timeout", 0, "Command timeout (overrides PB_APPLICATION_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides PB_APPLICATION_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	startCmd := &cobra.Command{
		Use:   "start <card-id>",
		Short: "Start a session on a card",
		Long:  "Start tracking time on a card. Fails when you already have a running or paused session.",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runRegistered("start"),
	}

	pauseCmd := &cobra.Command{
		Use:   "pause <entry-id>",
		Short: "Pause a running session",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runRegistered("pause"),
	}

	resumeCmd := &cobra.Command{
		Use:   "resume <entry-id>",
		Short: "Resume a paused session",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runRegistered("resume"),
	}

	stopCmd := &cobra.Command{
		Use:   "stop <entry-id>",
		Short: "Stop a session",
		Long:  "Stop a running or paused session. Sessions shorter than the minimum duration cannot be stopped yet.",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runRegistered("stop"),
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show your open session",
		Args:  cobra.NoArgs,
		RunE:  r.runRegistered("current"),
	}

	showCmd := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show a session and its segments",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runRegistered("show"),
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Report tracked hours over a range",
		Long: `Report tracked hours for a card or for yourself, bucketed over a range.

Ranges:
  day       10 hourly buckets from the start of the workday
  week      the last 7 days
  month     six 5-day buckets covering the last 30 days
  quarter   the last 3 calendar months

Examples:
  pb report --card <card-id>                       # This week for a card
  pb report --card <card-id> --estimate 8          # Compare against an 8h estimate
  pb report --mine --range quarter --format csv    # Export your quarter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "report", func(ctx context.Context, app *App) error {
				report := NewReportCommand(app)
				report.CardID = r.report.cardID
				report.Mine = r.report.mine
				report.Range = r.report.rangeKey
				report.EstimatedHours = r.report.estimate
				report.Format = r.report.format
				return report.Execute(ctx, args)
			})
		},
	}
	reportFlags := reportCmd.Flags()
	reportFlags.StringVar(&r.report.cardID, "card", "", "Card to report on")
	reportFlags.BoolVar(&r.report.mine, "mine", false, "Report on your own sessions across cards")
	reportFlags.StringVar(&r.report.rangeKey, "range", "week", "Range: day, week, month or quarter")
	reportFlags.Float64Var(&r.report.estimate, "estimate", 0, "Estimated hours to compare against")
	reportFlags.StringVar(&r.report.format, "format", FormatTable, "Output format: table, json or csv")
	reportCmd.MarkFlagsMutuallyExclusive("card", "mine")
	reportCmd.MarkFlagsOneRequired("card", "mine")

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import finished sessions from a CSV file",
		Long: `Import finished sessions recorded elsewhere.

Each row holds card_id,start_time,end_time[,total_seconds] with RFC 3339
times. A header row with those names is skipped. Without total_seconds a
session counts as active for its whole span. Imported sessions carry no
segment history; reports spread their total evenly over their span.
Every row is checked before any is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: r.runRegistered("import"),
	}

	r.cmd.AddCommand(
		startCmd,
		pauseCmd,
		resumeCmd,
		stopCmd,
		currentCmd,
		showCmd,
		reportCmd,
		importCmd,
	)
}

// runRegistered dispatches a cobra command to the registry entry of the
// same name
func (r *RootCommand) runRegistered(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return r.run(cmd, name, func(ctx context.Context, app *App) error {
			return app.registry.Execute(ctx, name, args)
		})
	}
}

// run opens the core and calls fn under the configured command timeout
func (r *RootCommand) run(cmd *cobra.Command, name string, fn func(context.Context, *App) error) error {
	app, err := r.ensureApp(cmd.Context())
	if err != nil {
		return err
	}
	timeout := r.config.Application.Timeout
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	err = fn(ctx, app)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(name, timeout).WithContext("cause", err.Error())
	}
	return err
}

// ensureApp loads configuration and opens the core on first use
func (r *RootCommand) ensureApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}

	loader := config.NewLoader()
	if r.configFile != "" {
		loader.WithConfigFile(r.configFile)
	}
	cfg, err := loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, apperrors.WrapError(err, apperrors.ErrorTypeInvalidInput, "invalid configuration: "+cfgErr.Error())
		}
		return nil, err
	}
	r.config = cfg
	r.logger = logging.New(r.errOut, cfg.Application.Verbose)

	rt, err := api.Open(ctx, cfg, r.clock, r.logger)
	if err != nil {
		return nil, err
	}
	r.runtime = rt
	r.app = NewAppWithOutput(rt.API, cfg, r.out, r.logger)
	return r.app, nil
}

// overridesFromFlags collects the flags that were set on the command line
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	o := &config.ConfigOverrides{}

	// Database configuration
	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		o.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		o.DBFilename = &v
	}
	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		o.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		o.DBWriteTimeout = &v
	}

	// Tracking configuration
	if flags.Changed("min-stop") {
		v, _ := flags.GetDuration("min-stop")
		o.MinimumStopDuration = &v
	}
	if flags.Changed("rate-window") {
		v, _ := flags.GetDuration("rate-window")
		o.RateLimitWindow = &v
	}
	if flags.Changed("rate-limit") {
		v, _ := flags.GetInt("rate-limit")
		o.RateLimitMaxActions = &v
	}

	// Analytics configuration
	if flags.Changed("timezone") {
		v, _ := flags.GetString("timezone")
		o.Timezone = &v
	}
	if flags.Changed("workday-start") {
		v, _ := flags.GetInt("workday-start")
		o.WorkdayStartHour = &v
	}

	// Application configuration
	if flags.Changed("user") {
		v, _ := flags.GetString("user")
		o.UserID = &v
	}
	if flags.Changed("json") {
		v, _ := flags.GetBool("json")
		o.OutputJSON = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		o.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}

	return o
}

// shutdown logs the metrics gathered during the command at debug level and
// closes the core
func (r *RootCommand) shutdown(ctx context.Context) {
	if r.runtime == nil {
		return
	}
	defer func() {
		if err := r.runtime.Close(); err != nil {
			r.logger.Warn(ctx, "close database", slog.Error(err))
		}
		r.runtime = nil
		r.app = nil
	}()

	families, err := r.runtime.Registry.Gather()
	if err != nil {
		r.logger.Warn(ctx, "gather metrics", slog.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			r.logger.Debug(ctx, "metric",
				slog.F("name", mf.GetName()),
				slog.F("labels", labelMap(m.GetLabel())),
				slog.F("value", metricValue(mf.GetType(), m)))
		}
	}
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	labels := make(map[string]string, len(pairs))
	for _, p := range pairs {
		labels[p.GetName()] = p.GetValue()
	}
	return labels
}

func metricValue(t dto.MetricType, m *dto.Metric) interface{} {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return map[string]interface{}{
			"count": h.GetSampleCount(),
			"sum":   time.Duration(h.GetSampleSum() * float64(time.Second)).String(),
		}
	default:
		return nil
	}
}
