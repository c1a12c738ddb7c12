package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"fairwork.com/fairwork/internal/services"
)

var freezeReason string

var freezeCmd = &cobra.Command{
	Use:   "freeze <worker-id> <requester-id>",
	Short: "Suspend bonus eligibility and estimate inclusion for a worker/requester pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		freeze := services.NewFreezeService(a.freezes, a.audits, a.requesters, a.pool)
		created, err := freeze.Freeze(context.Background(), args[0], args[1], freezeReason)
		if err != nil {
			return err
		}

		log.Printf("froze worker %s for requester %s (%s)", created.WorkerID, created.RequesterID, created.ID)
		return nil
	},
}

var unfreezeCmd = &cobra.Command{
	Use:   "unfreeze <worker-id> <requester-id>",
	Short: "Lift a freeze and re-admit the pair to the next payment run",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		freeze := services.NewFreezeService(a.freezes, a.audits, a.requesters, a.pool)
		if err := freeze.Unfreeze(context.Background(), args[0], args[1]); err != nil {
			return err
		}

		log.Printf("unfroze worker %s for requester %s", args[0], args[1])
		return nil
	},
}

func init() {
	freezeCmd.Flags().StringVarP(&freezeReason, "reason", "r", "", "reason shown to the worker")
	_ = freezeCmd.MarkFlagRequired("reason")

	rootCmd.AddCommand(freezeCmd)
	rootCmd.AddCommand(unfreezeCmd)
}
