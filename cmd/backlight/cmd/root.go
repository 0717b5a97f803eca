package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/config"
	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/power"
	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
	"github.com/iiroan/backlight/internal/ui"
	"github.com/iiroan/backlight/internal/version"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	configDir  string
	timestamps bool
	logger     *log.Logger
	cfg        *config.Config
)

// annotationTimestamps marks commands whose log lines always carry a time.
const annotationTimestamps = "timestamps"

var rootCmd = &cobra.Command{
	Use:   "backlight",
	Short: "Manage keyboard backlight profiles",
	Long: `backlight stores named lighting profiles for ITE 8291 keyboards and
applies them through the ite8291r3-ctl driver. It can restore the active
profile after resume, follow the power source, and reapply on file changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		timestamps = cmd.Annotations[annotationTimestamps] == "true"
		setupLogger()

		dir := configDir
		if dir == "" {
			var err error
			dir, err = config.DefaultDir()
			if err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load(dir)
		if err != nil {
			logger.Warn("could not load config, using defaults", "error", err)
			cfg = config.DefaultConfig()
			cfg.Dir = dir
		}

		applyUISettings()
		setupLogger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runRootTUI(cmd)
		}
		return cmd.Help()
	},
}

var launcherItems = []ui.MenuItem{
	{ID: "apply", TitleText: "Apply", Details: "Program the keyboard with the active profile"},
	{ID: "switch", TitleText: "Switch Profile", Details: "Choose another saved profile and apply it"},
	{ID: "edit", TitleText: "Edit Profile", Details: "Change mode, colors, speed and brightness of the active profile"},
	{ID: "profiles", TitleText: "Manage Profiles", Details: "Create, rename or delete saved profiles"},
	{ID: "settings", TitleText: "Settings", Details: "AC and battery profiles, theme and notifications"},
	{ID: "status", TitleText: "Status", Details: "Driver, device state and power source"},
	{ID: "off", TitleText: "Lights Off", Details: "Switch the backlight off without touching profiles"},
	{ID: "exit", TitleText: "Exit", Details: "Close backlight"},
}

func runRootTUI(cmd *cobra.Command) error {
	selected := ""
	for {
		choice, err := ui.RunMenu("BACKLIGHT", "Choose an action to continue.", launcherItems,
			ui.WithInitialSelectionID(selected),
			ui.WithInfo(launcherInfo),
			ui.WithVersion(version.Get().Short()),
		)
		if err != nil {
			return runRootFallback(cmd)
		}

		if choice == ui.MenuActionQuit || choice == "exit" || choice == "" {
			return nil
		}
		selected = choice

		if err := runRootChoice(choice); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			fmt.Println(ui.ErrorBox.Render(err.Error()))
		}

		if err := waitForEnter("Press enter to return to the menu"); err != nil {
			return err
		}
	}
}

func runRootChoice(choice string) error {
	switch choice {
	case "apply":
		return applyCmd.RunE(applyCmd, []string{})
	case "switch":
		return runSwitchProfile()
	case "edit":
		return profileEditCmd.RunE(profileEditCmd, []string{})
	case "profiles":
		return runProfileMenu()
	case "settings":
		return settingsCmd.RunE(settingsCmd, []string{})
	case "status":
		return statusCmd.RunE(statusCmd, []string{})
	case "off":
		return offCmd.RunE(offCmd, []string{})
	default:
		return nil
	}
}

func runRootFallback(cmd *cobra.Command) error {
	if !ui.CanPrompt() {
		return cmd.Help()
	}

	ui.StartScreen("BACKLIGHT", "Choose an action to continue.")
	options := make([]huh.Option[string], 0, len(launcherItems))
	for _, item := range launcherItems {
		options = append(options, huh.NewOption(item.TitleText, item.ID))
	}

	var choice string
	err := huh.NewSelect[string]().
		Title("Backlight").
		Description("What would you like to do?").
		Options(options...).
		Value(&choice).
		WithTheme(ui.HuhTheme()).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	return runRootChoice(choice)
}

// launcherInfo feeds the menu side panel. It only reads files so it is
// cheap enough to run on every refresh.
func launcherInfo() []ui.InfoLine {
	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()
	prefs := settings.Load(cfg.SettingsPath())

	mode := string(p.Mode)
	switch {
	case p.IsOff():
		mode = "off"
	case p.IsStatic():
		mode = "static " + ui.Swatch(string(p.StaticColor))
	}

	drv := ui.MutedStyle.Render("not found")
	if path, err := driver.Locate(cfg.Driver); err == nil {
		drv = path
	}

	src := power.Aggregate(power.Discover(cfg.PowerSupplyDir))
	next := prefs.Preferred(src == power.OnAC)
	if next == "" {
		next = ui.MutedStyle.Render("unchanged")
	}

	return []ui.InfoLine{
		{Label: "Profile", Value: name},
		{Label: "Mode", Value: mode},
		{Label: "Level", Value: ui.Meter(p.Brightness, profile.MaxBrightness, 12)},
		{Label: "Power", Value: src.String()},
		{Label: "On power", Value: next},
		{Label: "Driver", Value: drv},
	}
}

func waitForEnter(prompt string) error {
	if !ui.IsInteractiveTerminal() {
		return nil
	}
	fmt.Println()
	fmt.Println(ui.HintStyle.Render(prompt))
	reader := bufio.NewReader(os.Stdin)
	_, err := reader.ReadString('\n')
	return err
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if logger == nil {
		setupLogger()
	}
	logger.Error(err.Error())
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default: ~/.config/backlight-linux)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(brightnessCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func applyUISettings() {
	dark := false
	if cfg != nil {
		dark = settings.Load(cfg.SettingsPath()).DarkMode
	}
	ui.ApplyPreferences(ui.Preferences{
		Dark:    dark,
		Dense:   false,
		NoColor: noColor || os.Getenv("NO_COLOR") != "",
	})
}

func setupLogger() {
	level := log.InfoLevel
	if cfg != nil && cfg.LogLevel != "" {
		if parsed, err := log.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.WarnLevel
	}

	styles := log.DefaultStyles()
	if !noColor && os.Getenv("NO_COLOR") == "" {
		styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
			SetString("DEBUG").
			Foreground(ui.Muted).
			Bold(true)
		styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
			SetString("INFO").
			Foreground(ui.Primary).
			Bold(true)
		styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
			SetString("WARN").
			Foreground(ui.Warning).
			Bold(true)
		styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
			SetString("ERROR").
			Foreground(ui.Error).
			Bold(true)
	}

	timeFormat := time.Kitchen
	if timestamps {
		timeFormat = time.DateTime
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: verbose || timestamps,
		TimeFormat:      timeFormat,
		Level:           level,
	})
	logger.SetStyles(styles)
}
