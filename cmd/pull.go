package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"fairwork.com/fairwork/internal/services"
)

var pullCmd = &cobra.Command{
	Use:   "pull-status",
	Short: "Poll the marketplace for submission status changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		sync := services.NewSyncService(a.submissions, a.pool)
		return sync.Run(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
