package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cars-api/internal/common/config"
	"cars-api/internal/common/logger"
)

var (
	configPath string

	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "cars-api",
		Short:         "Read-only REST API over the car catalogue",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.LoadFromFile(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
				With(zap.String("service", cfg.App.Name), zap.String("environment", cfg.App.Environment))
			log = logger.NewZapAdapter(zapLog)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if zapLog != nil {
				_ = zapLog.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.yaml)")

	root.AddCommand(serveCmd(), checkCmd())
	return root.Execute()
}
