package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	appName    = "dashprep"
	appVersion = "0.1.0"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Prepare videos for adaptive-bitrate streaming",
		Long: appName + ` encodes a bitrate ladder with segment-aligned keyframes,
segments every representation into fixed-duration chunks, merges the
per-representation manifests into one, and optionally scores each
segment's quality against the highest-bitrate representation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newPrepareCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, appVersion)
		},
	}
}
