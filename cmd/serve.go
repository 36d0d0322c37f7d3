package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasi/internal/config"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/llm"
	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/server"
	"github.com/abhisek/lasi/internal/splitter"
	"github.com/abhisek/lasi/internal/textstore"
	"github.com/abhisek/lasi/internal/tts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			return fmt.Errorf("configure llm provider: %w", err)
		}

		speech, closeSpeech, err := tts.New(ctx, cfg.TTS, log)
		if err != nil {
			return fmt.Errorf("configure tts: %w", err)
		}
		defer closeSpeech()

		library, err := textstore.LoadLibrary(cfg.Library.Path)
		if err != nil {
			return err
		}
		metric, err := splitter.ParseMetric(cfg.Splitter.Metric)
		if err != nil {
			return err
		}
		split := splitter.New(splitter.Options{
			DefaultTargetTokens: cfg.Splitter.TargetTokens,
			Metric:              metric,
		})

		texts := textstore.New(library, st.TextRepo(), split, log)
		gw := gateway.New(provider, speech, cfg.GatewayOptions(), log)

		log.Info("starting lasi",
			"version", version,
			"llm_provider", cfg.LLM.Provider,
			"model", provider.ModelID(),
			"library_texts", len(library),
		)
		return server.New(cfg.Server, texts, gw, log, version).Run(ctx)
	},
}

// newLogger builds the zap logger for cfg, writing to the log file when
// one is configured.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Log.File != "" {
		return logger.NewToFile(cfg.Log.File)
	}
	return logger.New(cfg.Log.Mode)
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
