package main

import (
	"log"
	"os"
	"strings"

	"reid-dashboard/internal/backend"
	"reid-dashboard/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "reid-dashboard",
		Short:        "Admin dashboard for the property listing scraping pipeline",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the dashboard (default)
  reid-dashboard

  # Fetch page titles for a list of URLs
  reid-dashboard titles urls.txt

  # Queue tools
  reid-dashboard upload urls.json
  reid-dashboard sync
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => serve
			return runServe(cmd, a)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", getEnv("CONFIG_PATH", "config/dashboard.yaml"), "Path to the YAML config file")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newTitlesCmd(a))
	cmd.AddCommand(newUploadCmd(a))
	cmd.AddCommand(newSyncCmd(a))
	return cmd
}

func (a *app) loadConfig() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", a.configPath, err)
		cfg = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", a.configPath)
	}
	a.cfg = cfg

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

func (a *app) backendClient() *backend.Client {
	return backend.NewClient(a.cfg.Backend.BaseURL, a.cfg.Backend.GetTimeout())
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
