package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/community-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "community-sync",
	Short: "Community Slack to Salesforce sync service",
	Long:  "Receives Slack team_join events, resolves members against Salesforce (existing record, new Contact on a known Account, or new Lead), and announces the outcome on Chatter.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
