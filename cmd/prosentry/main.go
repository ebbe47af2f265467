package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/prosentry/prosentry/internal/ai"
	"github.com/prosentry/prosentry/internal/config"
	"github.com/prosentry/prosentry/internal/database"
	"github.com/prosentry/prosentry/internal/ingest"
	"github.com/prosentry/prosentry/internal/report"
	"github.com/prosentry/prosentry/internal/risk"
	"github.com/prosentry/prosentry/internal/server"
	"github.com/prosentry/prosentry/internal/simulate"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "prosentry",
	Short:   "Industrial safety risk monitoring",
	Long:    "ProSentry replays operational readings through a risk engine, raises alerts on high-risk conditions, and serves a live dashboard.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(alertsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("prosentry", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/prosentry/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure weights, thresholds, and the AI provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Sessions:")
		fmt.Printf("  Total: %d\n", stats.TotalSessions)
		fmt.Printf("  Completed: %d\n", stats.CompletedSessions)
		fmt.Println("\nReadings:")
		fmt.Printf("  Scored: %d\n", stats.TotalResults)
		fmt.Printf("  High risk: %d\n", stats.HighRiskResults)
		fmt.Println("\nAlerts:")
		fmt.Printf("  Total: %d\n", stats.TotalAlerts)
		fmt.Printf("  Unacknowledged: %d\n", stats.OpenAlerts)

		provider := buildProvider()
		if provider == nil {
			fmt.Println("\nAI: not configured (deterministic engine only)")
		} else if provider.IsConfigured() {
			fmt.Printf("\nAI: %s configured\n", cfg.AI.Provider)
		} else {
			fmt.Printf("\nAI: %s selected but API key missing\n", cfg.AI.Provider)
		}
		return nil
	},
}

// --- run command ---

var (
	runInterval float64
	runNoAI     bool
)

var runCmd = &cobra.Command{
	Use:   "run [file.csv]",
	Short: "Run a risk progression headless: CSV file or built-in demo sequence",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		readings, source, fileName, err := loadReadings(args)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		interval := cfg.SimulationInterval()
		if runInterval > 0 {
			interval = time.Duration(runInterval * float64(time.Second))
		}

		runner := buildRunner(db, interval)
		ch := make(chan simulate.TimelineEntry, len(readings))
		runner.Subscribe(ch)

		id, err := runner.Start(readings, source, fileName)
		if err != nil {
			return err
		}
		fmt.Printf("Processing %d readings from %s...\n\n", len(readings), source)

		for i := 0; i < len(readings); i++ {
			e := <-ch
			a := e.Assessment
			fmt.Printf("Step %d/%d  %-8s  risk %3d/100  %-6s  [%s]\n",
				e.Step+1, len(readings), e.Reading.Timestamp, a.Score, a.Level, e.ScoredBy)
		}

		snap := runner.Snapshot()
		if snap.Alert != nil {
			fmt.Printf("\nALERT: %s\n%s\n", snap.Alert.Title, snap.Alert.Message)
		}

		runner.Flush()
		printSessionReport(db, id)
		return nil
	},
}

func init() {
	runCmd.Flags().Float64Var(&runInterval, "interval", 0, "Seconds between readings (0 = config default)")
	runCmd.Flags().BoolVar(&runNoAI, "no-ai", false, "Skip the AI provider and use the deterministic engine only")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		runner := buildRunner(db, cfg.SimulationInterval())
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(runner, db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (0 = config default)")
}

// --- sessions command ---

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse recorded sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.GetRecentSessions(20)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded. Start one with: prosentry run")
			return nil
		}

		for _, s := range sessions {
			file := ""
			if s.FileName != nil {
				file = " " + *s.FileName
			}
			fmt.Printf("  %s  %-9s  %-4s%s  %d steps\n", s.ID, s.Status, s.DataSource, file, s.TotalSteps)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the full report for one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return printSessionReport(db, args[0])
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}

// --- alerts command ---

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Browse and acknowledge alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		alerts, err := db.GetRecentAlerts(20)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Println("No alerts recorded.")
			return nil
		}

		for _, a := range alerts {
			state := "open"
			if a.AcknowledgedAt != nil {
				state = "acked"
			}
			fmt.Printf("  [%d] %-5s  %s  risk %d/100  %s\n", a.ID, state, a.TriggeredAt, a.RiskScore, a.Title)
		}
		return nil
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack [id]",
	Short: "Acknowledge an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid alert ID: %s", args[0])
		}

		alert, err := db.GetAlert(id)
		if err != nil {
			return err
		}
		if alert == nil {
			return fmt.Errorf("alert %d not found", id)
		}
		if alert.AcknowledgedAt != nil {
			fmt.Printf("Alert [%d] already acknowledged at %s\n", id, *alert.AcknowledgedAt)
			return nil
		}

		ts := time.Now().UTC().Format(time.RFC3339)
		if err := db.AcknowledgeAlert(id, ts); err != nil {
			return err
		}
		fmt.Printf("Acknowledged alert [%d]: %s\n", id, alert.Title)
		return nil
	},
}

func init() {
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
}

// --- wiring helpers ---

func loadReadings(args []string) (readings []risk.Reading, source, fileName string, err error) {
	if len(args) == 0 {
		return ingest.DemoSequence(), "demo", "", nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", "", fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	parsed, err := ingest.ParseCSV(f)
	if err != nil {
		return nil, "", "", err
	}
	if len(parsed.Readings) == 0 {
		return nil, "", "", fmt.Errorf("no usable rows in %s", args[0])
	}
	if parsed.Dropped > 0 {
		fmt.Printf("Skipped %d invalid rows.\n", parsed.Dropped)
	}
	return parsed.Readings, "csv", filepath.Base(args[0]), nil
}

func buildProvider() ai.Provider {
	if cfg.AI.Provider == "none" {
		return nil
	}
	return ai.CreateProvider(cfg.AI.Provider, cfg.AI.GeminiModel, cfg.AI.GeminiKeyEnv,
		cfg.AI.OpenAIModel, cfg.AI.OpenAIKeyEnv)
}

func buildRunner(db *database.DB, interval time.Duration) *simulate.Runner {
	engine := risk.NewAnalyzer(analyzerWeights(), analyzerThresholds())

	var scorer simulate.Scorer
	var advisor simulate.Advisor
	if !runNoAI {
		if provider := buildProvider(); provider != nil && provider.IsConfigured() {
			scorer = ai.NewRiskAnalyzer(provider, cfg.AITimeout())
			advisor = ai.NewRecommender(provider, cfg.AITimeout())
		}
	}
	if advisor == nil {
		// Recommendations still work without a provider: the rule-based
		// fallback kicks in on every call.
		advisor = ai.NewRecommender(nil, cfg.AITimeout())
	}

	return simulate.NewRunner(simulate.Config{Interval: interval},
		engine, scorer, advisor, database.NewRecorder(db))
}

func analyzerWeights() risk.Weights {
	w := cfg.Analysis.Weights
	if w.WorkHours+w.NearMiss+w.MachineUsage+w.ShiftType+w.Temporal == 0 {
		return risk.DefaultWeights()
	}
	return risk.Weights{
		WorkHours:    w.WorkHours,
		NearMiss:     w.NearMiss,
		MachineUsage: w.MachineUsage,
		Shift:        w.ShiftType,
		Temporal:     w.Temporal,
	}
}

func analyzerThresholds() risk.Thresholds {
	t := cfg.Analysis.Thresholds
	if t.Medium == 0 && t.High == 0 {
		return risk.DefaultThresholds()
	}
	return risk.Thresholds{Medium: float64(t.Medium), High: float64(t.High)}
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "prosentry.db")
	return database.Open(dbPath)
}

func printSessionReport(db *database.DB, id string) error {
	session, err := db.GetSession(id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", id)
	}

	results, err := db.GetSessionResults(id)
	if err != nil {
		return err
	}
	alerts, err := db.GetSessionAlerts(id)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(report.Compose(session, results, alerts))
	return nil
}
