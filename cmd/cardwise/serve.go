package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/cardwise/internal/api"
	"github.com/Veraticus/cardwise/internal/metrics"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Long: `Start the HTTP API.

  POST /api/v1/recommend                    {"user_id": "u42", "query": "dining"}
  GET  /api/v1/cards/{id}                   card details with parsed benefits
  GET  /api/v1/users/{id}/recommendations   saved recommendations
  GET  /healthz
  GET  /metrics                             Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Init()

	server := api.NewServer(a.service, a.store, api.Config{
		Addr:            a.cfg.Server.Addr,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}, slog.Default())

	slog.Info("🚀 Serving recommendations", "addr", a.cfg.Server.Addr, "database", a.cfg.Database.Path)
	return server.ListenAndServe(ctx)
}
