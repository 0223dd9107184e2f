package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"numerologyx/internal/config"
	"numerologyx/internal/logging"
	"numerologyx/internal/server"
)

var serveAddr string

// serveCmd exposes the orchestrator over HTTP for a browser front-end
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Starts the HTTP API used by the web front-end. All requests share one
session, restored from the configured store at startup.`,
	RunE: runServe,
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	configCmd.AddCommand(configInitCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(a.orch, a.cfg.Server)
	fmt.Fprintf(cmd.OutOrStdout(), "numerologyX API listening on http://%s\n", a.cfg.Server.Addr)
	if err := srv.Run(ctx); err != nil {
		logging.ServerError("server stopped: %v", err)
		return err
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}
	cfg := config.DefaultConfig()
	if apiKey != "" {
		cfg.Gateway.APIKey = apiKey
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}
