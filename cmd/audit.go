package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"fairwork.com/fairwork/internal/services"
)

var auditCmd = &cobra.Command{
	Use:   "run-audit",
	Short: "Audit approved submissions against the minimum wage",
	Long:  "Computes rate estimates for every task group with approved, unaudited submissions and records the verdicts. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		audit := services.NewAuditService(a.submissions, a.durations, a.audits, a.freezes, a.cfg.MinimumWagePerHour)

		return a.withRunLock(context.Background(), 30*time.Minute, audit.Run)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
