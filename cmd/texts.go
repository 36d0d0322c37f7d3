package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/lang"
)

var textsCmd = &cobra.Command{
	Use:   "texts",
	Short: "Manage texts on the server",
}

var textsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List texts in a language",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, l, err := textsClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		texts, err := client.ListTexts(ctx, l)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(texts) == 0 {
			fmt.Fprintf(out, "No %s texts.\n", l)
			return nil
		}

		fmt.Fprintf(out, "%-32s  %-8s  %5s  %6s\n", "Name", "Source", "Parts", "Words")
		fmt.Fprintln(out, strings.Repeat("─", 58))
		for _, t := range texts {
			words := 0
			for _, p := range t.Parts {
				words += len(strings.Fields(p.Text))
			}
			source := t.Source
			if source == "" {
				source = api.SourceLibrary
			}
			fmt.Fprintf(out, "%-32s  %-8s  %5d  %6d\n", truncate(t.Name, 32), source, len(t.Parts), words)
		}
		return nil
	},
}

var textsPartsCmd = &cobra.Command{
	Use:   "parts <name>",
	Short: "Print the parts of a text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, l, err := textsClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		parts, err := client.Parts(ctx, args[0], l)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 60)
		for _, p := range parts {
			fmt.Fprintln(out, sep)
			fmt.Fprintln(out, p.Name)
			fmt.Fprintln(out, sep)
			fmt.Fprintln(out, p.Text)
			fmt.Fprintln(out)
		}
		return nil
	},
}

var textsUploadCmd = &cobra.Command{
	Use:   "upload <file|->",
	Short: "Upload a text file, split into parts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, l, err := textsClient(cmd)
		if err != nil {
			return err
		}
		body, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			if args[0] == "-" {
				return fmt.Errorf("--name is required when reading from stdin")
			}
			base := filepath.Base(args[0])
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		noSplit, _ := cmd.Flags().GetBool("no-split")
		tokens, _ := cmd.Flags().GetInt("tokens")
		autoSplit := !noSplit

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		t, err := client.Upload(ctx, api.UploadTextRequest{
			Name:                 name,
			Language:             string(l),
			Text:                 body,
			AutoSplit:            &autoSplit,
			FragmentTargetTokens: tokens,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (%s) in %d parts.\n", t.Name, t.Language, len(t.Parts))
		return nil
	},
}

var textsPreviewCmd = &cobra.Command{
	Use:   "preview <file|->",
	Short: "Show how a text would be split without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := textsClient(cmd)
		if err != nil {
			return err
		}
		body, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		tokens, _ := cmd.Flags().GetInt("tokens")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		fragments, err := client.Preview(ctx, body, tokens)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, f := range fragments {
			fmt.Fprintf(out, "[%d] %d words\n%s\n\n", i+1, len(strings.Fields(f)), f)
		}
		fmt.Fprintf(out, "%d fragments\n", len(fragments))
		return nil
	},
}

var textsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an uploaded text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, l, err := textsClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := client.DeleteText(ctx, args[0], l); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%s).\n", args[0], l)
		return nil
	},
}

// textsClient builds an API client from config and the --api and --lang
// flags.
func textsClient(cmd *cobra.Command) (*apiclient.Client, lang.Language, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.API.BaseURL = u
	}
	raw := cfg.Client.Language
	if v, _ := cmd.Flags().GetString("lang"); v != "" {
		raw = v
	}
	l, ok := lang.Parse(raw)
	if !ok {
		return nil, "", fmt.Errorf("unsupported language %q", raw)
	}
	return apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout)), l, nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}

func init() {
	textsCmd.PersistentFlags().String("api", "", "Server base URL (overrides api.base_url)")
	textsCmd.PersistentFlags().String("lang", "", "Text language: en, lv, es, ru")

	textsUploadCmd.Flags().String("name", "", "Text name (default: file name)")
	textsUploadCmd.Flags().Bool("no-split", false, "Store the whole text as one part")
	textsUploadCmd.Flags().Int("tokens", 0, "Target tokens per part (default: server setting)")
	textsPreviewCmd.Flags().Int("tokens", 0, "Target tokens per fragment (default: server setting)")

	textsCmd.AddCommand(textsListCmd)
	textsCmd.AddCommand(textsPartsCmd)
	textsCmd.AddCommand(textsUploadCmd)
	textsCmd.AddCommand(textsPreviewCmd)
	textsCmd.AddCommand(textsDeleteCmd)
}
