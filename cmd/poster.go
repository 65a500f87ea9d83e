package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
)

var posterOutput string

// posterCmd represents the poster command
var posterCmd = &cobra.Command{
	Use:   "poster <poster-path>",
	Short: "Download a movie poster",
	Long: `Download a poster by the poster path shown in movie listings, for
example "moviemanager poster /8tZYtuWezp8JbcsvHYO0O46tFbo.jpg".`,
	Args: cobra.ExactArgs(1),
	RunE: runPoster,
}

func init() {
	rootCmd.AddCommand(posterCmd)

	posterCmd.Flags().StringVarP(&posterOutput, "output", "o", "", "output file (default is the poster file name)")
}

func runPoster(cmd *cobra.Command, args []string) error {
	data, err := client.DownloadPoster(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	output := posterOutput
	if output == "" {
		output = path.Base(args[0])
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write poster: %w", err)
	}

	logger.Debug().Str("file", output).Int("bytes", len(data)).Msg("Saved poster")
	fmt.Printf("✓ Saved poster to %s\n", output)
	return nil
}
