// Package main pulso patient import server and CLI
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/config"
	"github.com/pulso-odonto/go-br-patient-parser/internal/outreach"
	"github.com/pulso-odonto/go-br-patient-parser/internal/roster"
	"github.com/pulso-odonto/go-br-patient-parser/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pulso",
		Short:        "pulso patient import server",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(parseCmd())
	root.AddCommand(formatsCmd())
	root.AddCommand(templatesCmd())
	root.AddCommand(linkCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the import API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)

	templates, err := outreach.LoadTemplates(cfg.TemplatesFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load templates")
		return err
	}

	h := server.NewHandler(server.HandlerConfig{
		Parser:        parser.New(),
		Roster:        roster.New(),
		Templates:     templates,
		Logger:        logger,
		DefaultMinAge: cfg.DefaultMinAge,
		DefaultMaxAge: cfg.DefaultMaxAge,
	})
	e := server.NewEcho(cfg, logger, h)

	addr := server.ListenAddr(cfg.Port)
	logger.Info().
		Str("env", cfg.Env).
		Int("templates", len(templates)).
		Int64("max_upload_mb", cfg.MaxUploadMB).
		Msgf("pulso disponível em http://%s", addr)

	return server.Run(ctx, e, addr, logger)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a patient export and print the import result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			format, ok := parser.ParseFormat(formatFlag)
			if !ok {
				return fmt.Errorf("unsupported format %q", formatFlag)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			var result *parser.ImportResult
			if format == parser.FormatAuto {
				result, err = parser.ParseFile(f, args[0])
			} else {
				result, err = parser.ParseFileAs(f, format)
			}
			if err != nil {
				return err
			}

			if len(result.Patients) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), parser.MsgNoPatients)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().String("format", "auto", "Source format: auto, json, csv or html")
	return cmd
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported source formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range parser.GetSupportedFormats() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-5s %-12s %s\n", f.Code, f.Name, f.Description)
			}
			return nil
		},
	}
}

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Print the message templates as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			templates, err := outreach.LoadTemplates(path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), templates)
		},
	}
	cmd.Flags().String("file", "", "YAML file with extra or replacement templates")
	return cmd
}

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print a WhatsApp link for one phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			phone, _ := cmd.Flags().GetString("phone")
			msg, _ := cmd.Flags().GetString("message")
			templateID, _ := cmd.Flags().GetString("template")

			if msg == "" && templateID != "" {
				t, ok := outreach.FindTemplate(outreach.DefaultTemplates(), templateID)
				if !ok {
					return fmt.Errorf("unknown template %q", templateID)
				}
				msg = t.Message
			}
			if phone == "" || msg == "" {
				return fmt.Errorf("--phone and --message (or --template) are required")
			}

			fmt.Fprintln(cmd.OutOrStdout(), outreach.WhatsAppURL(phone, msg))
			return nil
		},
	}
	cmd.Flags().String("phone", "", "Phone number, any punctuation")
	cmd.Flags().String("message", "", "Message text")
	cmd.Flags().String("template", "", "Template id used when --message is empty")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
