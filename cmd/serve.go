package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	httpapi "fairwork.com/fairwork/internal/http"
	"fairwork.com/fairwork/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingestion HTTP API server",
	Long:  "Serves the endpoints that record requesters, tasks, and worker time reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()

		ingest := services.NewIngestService(a.requesters, a.groups, a.submissions, a.durations, a.pool)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := echo.New()
		handler := httpapi.NewHandler(ingest)
		httpapi.Register(e, handler, a.cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", a.cfg.AppURL)
			if err := e.Start(a.cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
