package main

import (
	"github.com/spf13/cobra"

	"github.com/hirewatch-dev/hirewatch/internal/dash"
)

var dashAddr string

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the terminal dashboard",
	Long:  "Interactive dashboard over a running daemon's HTTP API: live postings, event feed, and start/stop controls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dash.Run(dashAddr)
	},
}

func init() {
	dashCmd.Flags().StringVar(&dashAddr, "addr", "http://127.0.0.1:8000", "base URL of the running daemon")
	rootCmd.AddCommand(dashCmd)
}
