package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	fileFlag string
	provFlag string
	timeFlag string
	rootCmd  = &cobra.Command{
		Use:   "invitectl",
		Short: "CLI client for the invite synthesis service",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Invite service base URL")

	// links subcommand: pure, offline encoding of an event JSON file
	linksCmd := &cobra.Command{
		Use:   "links",
		Short: "Encode an event JSON file into provider invite URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileFlag == "" {
				return fmt.Errorf("--file required")
			}
			return runLinks(fileFlag, provFlag, os.Stdout)
		},
	}
	linksCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Path to event JSON (use - for stdin)")
	linksCmd.Flags().StringVarP(&provFlag, "provider", "p", "", "Single provider (google, outlook, office365, yahoo, ics); empty for all")
	rootCmd.AddCommand(linksCmd)

	// extract subcommand: call the running service
	extractCmd := &cobra.Command{
		Use:   "extract [details...]",
		Short: "Extract events from free-form details via the service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(apiFlag, timeFlag, args, os.Stdout)
		},
	}
	extractCmd.Flags().StringVarP(&timeFlag, "local-time", "t", "", "Your current local time, as free text")
	rootCmd.AddCommand(extractCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
