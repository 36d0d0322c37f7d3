package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/app"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/screens/reader"
	"github.com/abhisek/lasi/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the terminal reader",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay connects to the server and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.API.BaseURL = u
	}
	if l, _ := cmd.Flags().GetString("lang"); l != "" {
		cfg.Client.Language = l
	}
	language, ok := lang.Parse(cfg.Client.Language)
	if !ok {
		return fmt.Errorf("unsupported language %q", cfg.Client.Language)
	}

	// The screen owns stdout; logs go to a file or nowhere.
	log := logger.Nop()
	if cfg.Log.File != "" {
		if log, err = logger.NewToFile(cfg.Log.File); err != nil {
			return err
		}
	}
	defer log.Sync()

	client := apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout))

	checkCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if _, err := client.CheckServer(checkCtx, minServerVersion); err != nil {
		return fmt.Errorf("lasi server at %s: %w\n\nStart it with: lasi serve", client.BaseURL(), err)
	}

	state := session.NewState(
		language,
		gateway.ParseDifficulty(cfg.Client.Difficulty),
		gateway.ParseLevel(cfg.Client.SimplifyLevel),
		gateway.ParseStrictness(cfg.Client.Strictness),
	)
	orch := session.NewOrchestrator(client, state, cfg.Client.UserID, log)

	return app.Run(cmd.Context(), app.Deps{
		Texts:        client,
		Orchestrator: orch,
		Reader:       reader.Options{AudioPlayer: cfg.Client.AudioPlayer},
	})
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, playCmd} {
		c.Flags().String("api", "", "Server base URL (overrides api.base_url)")
		c.Flags().String("lang", "", "Reading language: en, lv, es, ru")
	}
}
