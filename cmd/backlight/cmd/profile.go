package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
	"github.com/iiroan/backlight/internal/ui"
)

var (
	useApply  bool
	newApply  bool
	editApply bool

	editBrightness  int
	editMode        string
	editStaticColor string
	editSpeed       int
	editColor       string
	editDirection   string
	editReactive    bool
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"profiles"},
	Short:   "Manage saved lighting profiles",
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile (default: the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a profile with default values and make it active",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileNew,
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileRename,
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileDelete,
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile active",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUse,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Edit a profile and apply it",
	Long: `Edit a profile (default: the active one). Without flags an interactive
form is shown; with flags only the given fields change.

Examples:
  backlight profile edit
  backlight profile edit Night --mode static --color red --brightness 10
  backlight profile edit Gaming --mode wave --speed 7 --direction left`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfileEdit,
}

var profileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print all profiles as YAML",
	Args:  cobra.NoArgs,
	RunE:  runProfileExport,
}

func init() {
	profileUseCmd.Flags().BoolVar(&useApply, "apply", false, "Apply the profile after switching")
	profileNewCmd.Flags().BoolVar(&newApply, "apply", false, "Apply the profile after creating it")

	f := profileEditCmd.Flags()
	f.BoolVar(&editApply, "apply", true, "Apply the profile after saving")
	f.IntVarP(&editBrightness, "brightness", "b", profile.DefaultBrightness, "Brightness (0-50, 0 turns the backlight off)")
	f.StringVarP(&editMode, "mode", "m", string(profile.ModeStatic), "Mode: "+joinValues(profile.Modes))
	f.StringVarP(&editStaticColor, "color", "c", string(profile.ColorWhite), "Static color: "+joinValues(profile.Colors))
	f.IntVarP(&editSpeed, "speed", "s", profile.DefaultSpeed, "Effect speed (0-10)")
	f.StringVar(&editColor, "effect-color", string(profile.ColorNone), "Effect color: none, "+joinValues(profile.Colors))
	f.StringVarP(&editDirection, "direction", "d", string(profile.DirectionNone), "Effect direction: "+joinValues(profile.Directions))
	f.BoolVarP(&editReactive, "reactive", "r", false, "React to key presses (clears direction)")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileNewCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileExportCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	active, _ := store.ActiveProfile()
	prefs := settings.Load(cfg.SettingsPath())

	fmt.Println(ui.Title.Render("Profiles"))
	for _, name := range store.Names() {
		p, _ := store.Get(name)
		marker := ui.StatusPending.String()
		if name == active {
			marker = ui.StatusSuccess.String()
		}

		tags := []string{}
		if prefs.ACProfile == name {
			tags = append(tags, "AC")
		}
		if prefs.BatteryProfile == name {
			tags = append(tags, "battery")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " " + ui.MutedStyle.Render("["+strings.Join(tags, ", ")+"]")
		}

		fmt.Printf("  %s %-16s %s%s\n", marker, name, summarize(p), suffix)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()
	if len(args) == 1 {
		var err error
		if p, err = store.Get(args[0]); err != nil {
			return err
		}
		name = args[0]
	}

	fmt.Println(ui.Title.Render(name))
	printKV("Mode", string(p.Mode))
	printKV("Brightness", ui.Meter(p.Brightness, profile.MaxBrightness, 20))
	if p.IsStatic() {
		printKV("Color", ui.Swatch(string(p.StaticColor)))
		return nil
	}
	printKV("Speed", strconv.Itoa(p.Speed))
	printKV("Color", ui.Swatch(string(p.Color)))
	if p.Reactive {
		printKV("Reactive", "yes")
	} else {
		printKV("Direction", string(p.Direction))
	}
	return nil
}

func runProfileNew(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	if err := store.Create(args[0]); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}
	name, p := store.ActiveProfile()
	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("Created profile %s", name)))

	if newApply {
		return applyProfile(context.Background(), name, p)
	}
	return nil
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	return renameProfile(args[0], args[1])
}

func renameProfile(from, to string) error {
	to = strings.TrimSpace(to)
	store := profile.Load(cfg.ProfilePath())
	if err := store.Rename(from, to); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}

	prefs := settings.Load(cfg.SettingsPath())
	if prefs.RenameProfile(from, to) {
		if err := prefs.Save(cfg.SettingsPath()); err != nil {
			return err
		}
	}

	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("Renamed %s to %s", from, to)))
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	return deleteProfile(args[0])
}

func deleteProfile(name string) error {
	store := profile.Load(cfg.ProfilePath())
	if err := store.Delete(name); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}

	prefs := settings.Load(cfg.SettingsPath())
	if prefs.ForgetProfile(name) {
		if err := prefs.Save(cfg.SettingsPath()); err != nil {
			return err
		}
		logger.Info("cleared power source preference", "profile", name)
	}

	active, _ := store.ActiveProfile()
	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("Deleted %s, active profile is %s", name, active)))
	return nil
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	if err := store.SetActive(args[0]); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}
	name, p := store.ActiveProfile()
	fmt.Println(ui.SuccessStyle.Render("Active profile: " + name))

	if useApply {
		return applyProfile(context.Background(), name, p)
	}
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()
	if len(args) == 1 {
		var err error
		if p, err = store.Get(args[0]); err != nil {
			return err
		}
		name = args[0]
	}

	state := formState(p)
	if editFlagsChanged(cmd) {
		applyEditFlags(cmd, &state)
	} else {
		if !ui.CanPrompt() {
			return fmt.Errorf("no terminal for the editor; pass field flags instead (see --help)")
		}
		if err := runProfileForm(name, &state); err != nil {
			return err
		}
	}

	edited := profile.Capture(state)
	if err := store.Put(name, edited); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}
	logger.Debug("profile saved", "profile", name, "summary", summarize(edited))

	if editApply {
		return applyProfile(context.Background(), name, edited)
	}
	fmt.Println(ui.SuccessStyle.Render("Saved " + name))
	return nil
}

func runProfileExport(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	active, _ := store.ActiveProfile()

	doc := struct {
		Active   string                     `yaml:"active"`
		Profiles map[string]profile.Profile `yaml:"profiles"`
	}{Active: active, Profiles: store.Profiles}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	return enc.Close()
}

func formState(p profile.Profile) profile.FormState {
	return profile.FormState{
		Brightness:      p.Brightness,
		Mode:            string(p.Mode),
		StaticColor:     string(p.StaticColor),
		LastStaticColor: p.StaticColor,
		Speed:           p.Speed,
		Color:           string(p.Color),
		Direction:       string(p.Direction),
		Reactive:        p.Reactive,
	}
}

var editFlagNames = []string{"brightness", "mode", "color", "speed", "effect-color", "direction", "reactive"}

func editFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range editFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func applyEditFlags(cmd *cobra.Command, s *profile.FormState) {
	flags := cmd.Flags()
	if flags.Changed("brightness") {
		s.Brightness = editBrightness
	}
	if flags.Changed("mode") {
		s.Mode = editMode
	}
	if flags.Changed("color") {
		s.StaticColor = editStaticColor
	}
	if flags.Changed("speed") {
		s.Speed = editSpeed
	}
	if flags.Changed("effect-color") {
		s.Color = editColor
	}
	if flags.Changed("direction") {
		s.Direction = editDirection
	}
	if flags.Changed("reactive") {
		s.Reactive = editReactive
	}
}

func runProfileForm(name string, s *profile.FormState) error {
	brightness := strconv.Itoa(s.Brightness)
	speed := strconv.Itoa(s.Speed)
	isStatic := func() bool { return s.Mode == string(profile.ModeStatic) }

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Description("Static color or one of the keyboard's effects").
				Options(stringOptions(profile.Modes)...).
				Value(&s.Mode),
			huh.NewInput().
				Title("Brightness").
				Description(fmt.Sprintf("%d-%d, 0 turns the backlight off", profile.MinBrightness, profile.MaxBrightness)).
				Value(&brightness).
				Validate(intInRange(profile.MinBrightness, profile.MaxBrightness)),
		).Title("Edit " + name),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color").
				Options(stringOptions(profile.Colors)...).
				Value(&s.StaticColor),
		).WithHideFunc(func() bool { return !isStatic() }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Speed").
				Options(speedOptions()...).
				Value(&speed),
			huh.NewSelect[string]().
				Title("Effect Color").
				Options(append([]huh.Option[string]{huh.NewOption("none", string(profile.ColorNone))}, stringOptions(profile.Colors)...)...).
				Value(&s.Color),
			huh.NewConfirm().
				Title("Reactive").
				Description("Light keys as they are pressed").
				Value(&s.Reactive),
			huh.NewSelect[string]().
				Title("Direction").
				Description("Ignored for reactive effects").
				Options(stringOptions(profile.Directions)...).
				Value(&s.Direction),
		).WithHideFunc(isStatic),
	).WithTheme(ui.HuhTheme())

	if err := form.Run(); err != nil {
		return err
	}

	s.Brightness, _ = strconv.Atoi(brightness)
	s.Speed, _ = strconv.Atoi(speed)
	return nil
}

func runSwitchProfile() error {
	store := profile.Load(cfg.ProfilePath())
	active, _ := store.ActiveProfile()

	choice := active
	err := huh.NewSelect[string]().
		Title("Switch Profile").
		Description("The chosen profile becomes active and is applied.").
		Options(huh.NewOptions(store.Names()...)...).
		Value(&choice).
		WithTheme(ui.HuhTheme()).
		WithKeyMap(ui.FormKeyMap()).
		Run()
	if err != nil {
		return err
	}
	return runApply(applyCmd, []string{choice})
}

func runProfileMenu() error {
	for {
		choice, err := ui.RunMenu("PROFILES", "Create, rename or delete profiles", []ui.MenuItem{
			{ID: "list", TitleText: "List", Details: "Show every saved profile"},
			{ID: "new", TitleText: "New Profile", Details: "Add a profile with default values and make it active"},
			{ID: "rename", TitleText: "Rename", Details: "Rename a profile; power source preferences follow it"},
			{ID: "delete", TitleText: "Delete", Details: "Remove a profile; the last one cannot be deleted"},
		}, ui.WithBackNavigation("Back"))
		if err != nil {
			return err
		}

		switch choice {
		case ui.MenuActionBack, ui.MenuActionQuit, "":
			return nil
		case "list":
			err = runProfileList(profileListCmd, nil)
		case "new":
			err = promptNewProfile()
		case "rename":
			err = promptRenameProfile()
		case "delete":
			err = promptDeleteProfile()
		}
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			logger.Error(err.Error())
		}
		if err := waitForEnter("Press enter to continue"); err != nil {
			return err
		}
	}
}

func promptNewProfile() error {
	store := profile.Load(cfg.ProfilePath())
	var name string
	err := huh.NewInput().
		Title("Profile Name").
		Value(&name).
		Validate(newNameValidator(store)).
		WithTheme(ui.HuhTheme()).
		Run()
	if err != nil {
		return err
	}
	return runProfileNew(profileNewCmd, []string{strings.TrimSpace(name)})
}

func promptRenameProfile() error {
	store := profile.Load(cfg.ProfilePath())
	from, _ := store.ActiveProfile()
	var to string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Profile").
				Options(huh.NewOptions(store.Names()...)...).
				Value(&from),
			huh.NewInput().
				Title("New Name").
				Value(&to).
				Validate(newNameValidator(store)),
		),
	).WithTheme(ui.HuhTheme())
	if err := form.Run(); err != nil {
		return err
	}
	return renameProfile(from, to)
}

func promptDeleteProfile() error {
	store := profile.Load(cfg.ProfilePath())
	if len(store.Names()) <= 1 {
		return profile.ErrLastProfile
	}

	var (
		name    string
		confirm bool
	)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Profile").
				Options(huh.NewOptions(store.Names()...)...).
				Value(&name),
			huh.NewConfirm().
				Title("Delete this profile?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(ui.HuhTheme())
	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		return nil
	}
	return deleteProfile(name)
}

func newNameValidator(store *profile.Store) func(string) error {
	return func(value string) error {
		name := strings.TrimSpace(value)
		if name == "" {
			return profile.ErrEmptyName
		}
		if store.Has(name) {
			return profile.ErrExists
		}
		return nil
	}
}

func intInRange(lo, hi int) func(string) error {
	return func(value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a whole number from %d to %d", lo, hi)
		}
		return nil
	}
}

func speedOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, profile.MaxSpeed-profile.MinSpeed+1)
	for i := profile.MinSpeed; i <= profile.MaxSpeed; i++ {
		opts = append(opts, huh.NewOption(strconv.Itoa(i), strconv.Itoa(i)))
	}
	return opts
}

func stringOptions[T ~string](values []T) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(values))
	for _, v := range values {
		opts = append(opts, huh.NewOption(string(v), string(v)))
	}
	return opts
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// summarize renders a profile on one line for lists and logs.
func summarize(p profile.Profile) string {
	switch {
	case p.IsOff():
		return "off"
	case p.IsStatic():
		return fmt.Sprintf("static %s at %d", p.StaticColor, p.Brightness)
	}
	parts := []string{string(p.Mode), "at " + strconv.Itoa(p.Brightness), "speed " + strconv.Itoa(p.Speed)}
	if p.Color != profile.ColorNone {
		parts = append(parts, string(p.Color))
	}
	if p.Reactive {
		parts = append(parts, "reactive")
	} else if p.Direction != profile.DirectionNone {
		parts = append(parts, string(p.Direction))
	}
	return strings.Join(parts, ", ")
}
