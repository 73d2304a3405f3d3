package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/waytab/waytab/internal/backend"
	"github.com/waytab/waytab/internal/config"
	"github.com/waytab/waytab/internal/daemon"
	"github.com/waytab/waytab/internal/logger"
)

var (
	cfgFile  string
	runAs    bool
	show     bool
	showPrev bool

	rootCmd = &cobra.Command{
		Use:   "waytab",
		Short: "waytab - Alt-Tab window switcher for Wayland compositors",
		Long: `waytab is a most-recently-used window switcher for Wayland compositors.

Run it once with --daemon to start the background service; further
invocations with --show or --show-prev (typically bound to compositor
keybindings) tell the running daemon to open the switcher or cycle it.`,
		Example: `  # Start the daemon against niri
  waytab --daemon --backend niri

  # Open the switcher, or advance it when already open
  waytab --show

  # Same, cycling backward
  waytab --show-prev`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/waytab/config.yaml)")
	rootCmd.Flags().BoolVar(&runAs, "daemon", false, "run the switcher daemon")
	rootCmd.Flags().String("backend", "", "compositor backend (niri, hyprland, sway, kwin, gnome)")
	rootCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&show, "show", false, "ask the running daemon to open the switcher")
	rootCmd.Flags().BoolVar(&showPrev, "show-prev", false, "ask the running daemon to open the switcher cycling backward")

	viper.BindPFlag("backend", rootCmd.Flags().Lookup("backend"))
	viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if runAs {
		return runDaemon()
	}

	configMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}
	cfg := configMgr.Get()

	switch {
	case show:
		sendCommand(cfg.SocketName, daemon.SendShow)
	case showPrev:
		sendCommand(cfg.SocketName, daemon.SendShowPrev)
	default:
		cmd.SetOut(os.Stderr)
		cmd.Usage()
	}
	return nil
}

// sendCommand is best effort: a missing daemon is not an error for the
// client invocation, it is just logged.
func sendCommand(socketName string, send func(string) error) {
	if err := send(socketName); err != nil {
		logger.Get().Warn().Err(err).Msg("no daemon answered on the control socket")
	}
}

func runDaemon() error {
	configMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		configMgr.SetLogLevel(viper.GetString("log_level"))
	}
	if viper.IsSet("backend") && viper.GetString("backend") != "" {
		configMgr.SetBackend(viper.GetString("backend"))
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, true)

	kind, err := backend.ParseKind(cfg.Backend)
	if err != nil {
		return fmt.Errorf("failed to select backend: %w", err)
	}

	log := logger.Get()
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("backend", string(kind)).
		Msg("starting waytab daemon")

	d := daemon.New(backend.For(kind), cfg)
	if err := d.Run(); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			return fmt.Errorf("another waytab daemon is already running: %w", err)
		}
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
