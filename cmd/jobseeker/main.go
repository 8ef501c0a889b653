package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/cvparser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/config"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/logging"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/orchestrator"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/screenshot"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/status"
)

var (
	configPath string
	searchTerm string
	location   string
	maxApps    int
	cvPath     string
	headless   bool
	verbose    bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "jobseeker",
		Short: "Automate LinkedIn job applications from your CV",
		Long: `jobseeker logs into LinkedIn, searches for matching postings, and
completes Easy Apply applications using your CV and profile answers.

Example:
  jobseeker apply --search "Go Developer" --location Remote --cv cv.pdf --max 5`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Search postings and apply",
		RunE:  runApply,
	}
	applyCmd.Flags().StringVar(&searchTerm, "search", "", "Job search keywords")
	applyCmd.Flags().StringVar(&location, "location", "", "Job search location")
	applyCmd.Flags().IntVar(&maxApps, "max", 0, "Maximum applications this run")
	applyCmd.Flags().StringVar(&cvPath, "cv", "", "Path to CV (pdf or txt)")
	applyCmd.Flags().BoolVar(&headless, "headless", false, "Run the browser headless")

	scanCmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Highlight clickable elements on a page and dump the tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().BoolVar(&headless, "headless", false, "Run the browser headless")

	parseCmd := &cobra.Command{
		Use:   "parse-cv <path>",
		Short: "Parse a CV and print the structured result",
		Args:  cobra.ExactArgs(1),
		RunE:  runParseCV,
	}

	rootCmd.AddCommand(applyCmd, scanCmd, parseCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Flags override file and env values.
	if searchTerm != "" {
		cfg.LinkedIn.SearchTerm = searchTerm
	}
	if location != "" {
		cfg.LinkedIn.Location = location
	}
	if maxApps > 0 {
		cfg.LinkedIn.MaxApplications = maxApps
	}
	if cvPath != "" {
		cfg.Storage.CVPath = cvPath
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.LinkedIn.SearchTerm == "" {
		return fmt.Errorf("a search term is required (--search or config)")
	}

	logger, closeLog, err := logging.Setup(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller, err := orchestrator.New(cfg, logger)
	if err != nil {
		return err
	}
	defer controller.Close()

	if err := controller.ParseCV(ctx); err != nil {
		return err
	}
	controller.SetProfile(models.UserProfile{})

	if cfg.Status.Enabled {
		srv := status.New(cfg.Status.Addr, controller.Tracker(), controller.Events(), logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("status server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := controller.StartSession(ctx); err != nil {
		return err
	}
	return controller.RunMasterPlan(ctx)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.Logging.Level, "")
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := browser.Open(browser.Options{
		Width:      cfg.Browser.Width,
		Height:     cfg.Browser.Height,
		Headless:   headless,
		Stealth:    cfg.Browser.Stealth,
		ProfileDir: cfg.Browser.ProfileDir,
		Timeout:    cfg.Browser.Timeout,
	}, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Navigate(args[0]); err != nil {
		return err
	}

	domSvc := browser.NewDOMService(session.Page(), logger)
	root, err := domSvc.Tree(true, cfg.DOM.MaxHighlight)
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("page produced no renderable content")
	}

	capturer := screenshot.NewCapturer(session.Page(), screenshot.Options{
		Dir: cfg.Storage.ScreenshotDir,
	})
	path, err := capturer.Save("scan")
	if err != nil {
		logger.Warn("screenshot failed", "error", err)
	} else {
		logger.Info("screenshot saved", "path", path)
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	fmt.Println(string(out))

	for _, node := range root.FindHighlighted() {
		fmt.Fprintf(os.Stderr, "[%d] <%s> %s\n",
			*node.HighlightIndex, node.Tag, nodeText(node))
	}
	return nil
}

// nodeText returns the first text content found in the subtree, trimmed to
// one short line.
func nodeText(n *dom.Node) string {
	var text string
	var visit func(*dom.Node) bool
	visit = func(node *dom.Node) bool {
		if s := strings.TrimSpace(node.Content); s != "" {
			text = s
			return true
		}
		for _, child := range node.Children {
			if visit(child) {
				return true
			}
		}
		return false
	}
	visit(n)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}

func runParseCV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.Logging.Level, "")
	if err != nil {
		return err
	}
	defer closeLog()

	parser := cvparser.New(nil, logger)
	cv, err := parser.Parse(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:     %s\n", cv.FullName)
	fmt.Printf("Email:    %s\n", cv.Email)
	fmt.Printf("Phone:    %s\n", cv.Phone)
	fmt.Printf("Location: %s\n", cv.Location)
	if len(cv.Skills) > 0 {
		fmt.Printf("Skills:   %v\n", cv.Skills)
	}
	for _, pos := range cv.Experience {
		fmt.Printf("  %s - %s (%s to %s)\n", pos.Title, pos.Company, pos.StartDate, pos.EndDate)
	}
	return nil
}
