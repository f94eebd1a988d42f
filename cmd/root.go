package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tankobon",
	Short: "Download manga chapters from supported viewer platforms.",
	Long: `Download manga chapters from supported viewer platforms.

Provide a configuration file using one of the following methods:
1. Use the --config <path> or -c <path> flag.
2. Place a config.yaml file in the default user configuration directory (e.g., ~/.config/tankobon/).
3. Place a config.yaml file a folder inside your home directory (e.g., ~/.tankobon/).
4. Place a config.yaml file in the directory of the binary.`,
}

func init() {
	initRootFlags()
	initDownloadFlags()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
