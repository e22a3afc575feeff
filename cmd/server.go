package cmd

import (
	"WaveFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the WaveFM HTTP server",
	Long:  `Starts the WaveFM HTTP server: song uploads, leaderboard, play counting and the shared chat room.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
