package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"podforge/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "podforge",
		Short: "Podforge turns a topic idea into a finished podcast.",
		Long: `Podforge guides a podcast from idea to audio: it refines a raw topic,
researches it through external AI services, plans episodes, generates
timed scripts and synthesizes speech.

Run 'podforge serve' to start the HTTP server the web UI talks to.`,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.podforge.yaml)")

	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	_, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
