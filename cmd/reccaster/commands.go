package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/reccaster/internal/caster"
	"github.com/muurk/reccaster/internal/config"
	"github.com/muurk/reccaster/internal/discovery"
	"github.com/muurk/reccaster/internal/logging"
	"github.com/muurk/reccaster/internal/protocol"
	"github.com/muurk/reccaster/internal/ui"
)

// Command flags
var (
	useTUI        bool
	listenPort    int
	logFile       string
	listenTimeout int
	forceInit     bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(initCmd)

	runCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live status view instead of plain output")
	runCmd.Flags().IntVar(&listenPort, "port", 0, "UDP announcement port (default from config, normally 5049)")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout")

	listenCmd.Flags().IntVar(&listenPort, "port", 0, "UDP announcement port (default from config, normally 5049)")
	listenCmd.Flags().IntVar(&listenTimeout, "timeout", 0, "Scan for this many seconds and print a summary (0 watches until interrupted)")

	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Listen.Port = listenPort
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p, err := config.GetConfigPath(); err == nil {
		return p
	}
	return "(defaults)"
}

// serviceLevel is the log level for long-running commands: explicit
// settings first, then the environment, then info.
func serviceLevel(level string) string {
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		return "info"
	}
	return level
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Announce the record catalog to RecSync servers",
	Long: `Listen for RecSync server announcements and upload the record catalog.

The client stays connected after the upload and answers keepalive pings.
If the connection fails it goes back to listening and reconnects, backing
off between failed attempts.`,
	Example: `  # Run with the default config file
  reccaster run

  # Live status view, logging to a file
  reccaster run --tui --log-file reccaster.log --log-level debug

  # Use a non-standard announcement port
  reccaster run --config ioc.yaml --port 15049`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if useTUI && !ui.IsTerminal() {
		return errors.New("--tui needs an interactive terminal")
	}

	var outputs []string
	if logFile != "" {
		outputs = append(outputs, logFile)
	}
	if useTUI && logFile == "" {
		// Console logs would tear the status view
		logging.SetLogger(zap.NewNop())
	} else if err := logging.Initialize(serviceLevel(cfg.LogLevel), outputs...); err != nil {
		return err
	}
	defer logging.Sync()

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	listener, err := discovery.Listen(ctx, cfg.Listen.Address, cfg.Listen.Port)
	if err != nil {
		return err
	}
	defer listener.Close()

	logging.Info("Listening for announcements",
		zap.Stringer("addr", listener.LocalAddr()),
		zap.Int("records", cat.Len()),
	)

	opts := []caster.Option{caster.WithConfig(cfg.CasterConfig())}

	if !useTUI {
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Reccaster", "reccaster run", []ui.Param{
			{Key: "Config", Value: displayConfigPath()},
			{Key: "Listen", Value: listener.LocalAddr().String()},
			{Key: "Records", Value: strconv.Itoa(cat.Len())},
		})
		c := caster.New(cat, listener, append(opts, caster.WithObserver(printObserver(p)))...)
		return ignoreShutdown(c.Run(ctx))
	}

	model := ui.NewStatusModel(listener.LocalAddr().String(), cat.Len(), len(caster.UploadPlan(cat)))
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	c := caster.New(cat, listener, append(opts, caster.WithObserver(ui.NewStatusObserver(program)))...)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer program.Quit()
		return ignoreShutdown(c.Run(runCtx))
	})
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("status view: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ignoreShutdown treats an interrupted run as a clean exit
func ignoreShutdown(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// printObserver prints each state change as one line
func printObserver(p *ui.Printer) caster.Observer {
	return caster.ObserverFuncs{
		OnStateChanged: func(from, to caster.State, reason string) {
			p.Println(fmt.Sprintf("  %s  %s → %s  %s",
				ui.MutedStyle.Render(time.Now().Format(time.TimeOnly)),
				from.Name(),
				ui.StateStyle(to.Name()).Render(to.String()),
				ui.MutedStyle.Render(reason),
			))
		},
	}
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Show RecSync server announcements",
	Long: `Listen for RecSync server announcements without connecting.

By default every announcement is printed as it arrives. With --timeout the
command scans for that long and prints one line per server.`,
	Example: `  # Watch announcements until interrupted
  reccaster listen

  # Scan for 15 seconds
  reccaster listen --timeout 15`,
	RunE: runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := logging.Initialize(serviceLevel(cfg.LogLevel)); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signalContext(cmd)
	defer stop()

	listener, err := discovery.Listen(ctx, cfg.Listen.Address, cfg.Listen.Port)
	if err != nil {
		return err
	}
	defer listener.Close()

	p := ui.NewPrinter(cmd.OutOrStdout())

	if listenTimeout > 0 {
		timeout := time.Duration(listenTimeout) * time.Second
		p.Println(fmt.Sprintf("Scanning %s for RecSync servers (timeout: %s)...", listener.LocalAddr(), timeout))
		p.Newline()

		servers, err := listener.Scan(ctx, timeout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scan failed: %w", err)
		}
		p.Print(ui.RenderServers(servers))
		if len(servers) == 0 {
			p.Newline()
			p.Println("Troubleshooting:")
			p.Println("  - Check that a RecSync server is running on this network")
			p.Println("  - Check that UDP port " + strconv.Itoa(cfg.Listen.Port) + " is not blocked by a firewall")
			p.Println("  - Servers announce every few seconds; try a longer --timeout")
		}
		return nil
	}

	p.Println(fmt.Sprintf("Watching %s for RecSync announcements (Ctrl+C to stop)", listener.LocalAddr()))
	p.Newline()
	err = listener.Watch(ctx, func(srv *discovery.Server) {
		p.Println(ui.RenderServer(srv))
	})
	return ignoreShutdown(err)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the record catalog and the upload it produces",
	Long: `Validate the configuration file and print its records, together with
the exact message sequence sent to a server after the handshake.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	plan := caster.UploadPlan(cat)

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Record Catalog", "reccaster catalog", []ui.Param{
		{Key: "Config", Value: displayConfigPath()},
		{Key: "Records", Value: strconv.Itoa(cat.Len())},
		{Key: "Messages", Value: strconv.Itoa(len(plan))},
	})
	p.Print(ui.RenderCatalog(cat, caster.RecordIDBase))
	p.Newline()
	p.Print(ui.RenderUploadPlan(plan))
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Example: `  # Write to the default location
  reccaster init

  # Write to a specific file, replacing it if it exists
  reccaster init --config ioc.yaml --force`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	path, err := config.CreateDefaultConfig(configPath, forceInit)
	if err != nil {
		p.PrintError("Config not written", err, []string{
			"Use --force to replace an existing file",
			"Use --config to choose another location",
		})
		return err
	}

	p.PrintSuccess("Config written", []ui.Param{
		{Key: "Path", Value: path},
		{Key: "Announcement port", Value: strconv.Itoa(protocol.AnnouncementPort)},
		{Key: "Next", Value: "edit the records, then run 'reccaster run'"},
	})
	return nil
}
