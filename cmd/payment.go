package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"fairwork.com/fairwork/internal/services"
)

var paymentCmd = &cobra.Command{
	Use:   "run-payment",
	Short: "Notify requesters and disburse pending fair-wage bonuses",
	Long:  "Sends the consolidated digest for newly pending bonuses, then pays out audits whose grace period has elapsed. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		payment := services.NewPaymentService(
			a.audits,
			a.pool,
			a.mailer,
			a.cfg.MinimumWagePerHour,
			a.cfg.GracePeriod,
			a.cfg.BonusFeeRate,
		)

		return a.withRunLock(context.Background(), 30*time.Minute, payment.Run)
	},
}

func init() {
	rootCmd.AddCommand(paymentCmd)
}
