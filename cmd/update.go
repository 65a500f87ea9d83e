package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviemanager/config"
)

const defaultRepository = "s0up4200/moviemanager"

var (
	appVersion   = "dev"
	appBuildTime = "unknown"

	updateRepository string
)

// SetVersion sets the version information reported by the CLI
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "Print version information",
	PersistentPreRunE:  skipInit,
	PersistentPostRunE: skipInit,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("moviemanager %s (built %s)\n", appVersion, appBuildTime)
	},
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:                "update",
	Short:              "Update moviemanager to the latest release",
	PersistentPreRunE:  skipInit,
	PersistentPostRunE: skipInit,
	RunE:               runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateRepository, "repository", "", "GitHub repository to update from (owner/name)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})

	current, err := semver.ParseTolerant(appVersion)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", appVersion)
	}

	repository := updateRepository
	if repository == "" {
		repository = defaultRepository
		if loaded, err := config.Load(cfgFile); err == nil && loaded.Update.Repository != "" {
			repository = loaded.Update.Repository
		}
	}

	ctx := cmd.Context()
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("failed to detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repository)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("✓ Already up to date (%s)\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	logger.Info().
		Str("current", current.String()).
		Str("latest", latest.Version()).
		Str("asset", latest.AssetName).
		Msg("Updating moviemanager")

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated to %s\n", latest.Version())
	return nil
}
