package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iiroan/backlight/internal/config"
	"github.com/iiroan/backlight/internal/ui"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration and file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config.yaml")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfg.FilePath()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	defaults := config.DefaultConfig()
	if err := defaults.Save(path); err != nil {
		return err
	}
	fmt.Println(ui.SuccessStyle.Render("Wrote " + path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Println(ui.Title.Render("Files"))
	printKV("Config", fileLabel(cfg.FilePath()))
	printKV("Profiles", fileLabel(cfg.ProfilePath()))
	printKV("Settings", fileLabel(cfg.SettingsPath()))
	printKV("Monitor lock", cfg.LockPath())

	fmt.Println()
	fmt.Println(ui.Title.Render("Effective"))
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func fileLabel(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " " + ui.MutedStyle.Render("(missing)")
	}
	return path
}
