// Package cmd provides the command-line interface for akitasync.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "akitasync",
	Short: "akitasync runs a discrete-event engine that sleeps when idle.",
	Long: `akitasync runs a discrete-event engine that suspends itself ` +
		`while every component waits for outside input, and wakes up ` +
		`again when input arrives. Defaults can be set with AKITASYNC_* ` +
		`variables, either in the environment or in a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	loadDotEnv(".env")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReportCmd())
}

// loadDotEnv reads variables from path without overriding the ones that are
// already set. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	_ = godotenv.Load(path)
}
