package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "soundcloudy",
	Short:        "Download SoundCloud tracks and playlists through scdl",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newDownloadCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
