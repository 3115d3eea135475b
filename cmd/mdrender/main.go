package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/mdrender/internal/app"
	"github.com/dgallion1/mdrender/internal/config"
	"github.com/dgallion1/mdrender/internal/markdown"
)

var version = "0.1.0"

var v = config.New()

var rootCmd = &cobra.Command{
	Use:           "mdrender",
	Short:         "Render Markdown into a UI render tree",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a Markdown file and print the tree as JSON",
	Long: `Reads Markdown from a file, or from stdin when the argument is "-"
or missing, and prints the render tree as JSON.

Examples:
  mdrender render README.md --toc
  cat notes.md | mdrender render --mode ast`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP render API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(renderCmd, serveCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file (default mdrender.yaml in . or ~/.config/mdrender)")
	rootCmd.PersistentFlags().Bool("allow-html", false, "Pass raw HTML in the source through (sanitized)")
	rootCmd.PersistentFlags().String("style", "", "Chroma style for code highlighting")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level")

	renderCmd.Flags().Bool("toc", false, "Include a table of contents")
	renderCmd.Flags().StringP("mode", "m", string(markdown.ModeTokens), "Render path: tokens or ast")
	renderCmd.Flags().Bool("tokens", false, "Print the token stream instead of the tree")
	renderCmd.Flags().Bool("pretty", false, "Indent JSON output")

	serveCmd.Flags().StringP("port", "p", "", "Listen port")

	v.BindPFlag("allow_html", rootCmd.PersistentFlags().Lookup("allow-html"))
	v.BindPFlag("highlight_style", rootCmd.PersistentFlags().Lookup("style"))
	v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	v.BindPFlag("toc_default", renderCmd.Flags().Lookup("toc"))
}

func initConfig() {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		}
	}
}

func newLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readSource(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := readSource(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if int64(len(src)) > cfg.MaxSourceBytes {
		return fmt.Errorf("source is %d bytes, limit is %d", len(src), cfg.MaxSourceBytes)
	}

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := markdown.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	renderer := app.NewRenderer(cfg, nil, newLogger(cmd, cmd.ErrOrStderr()))

	var out any
	if tokens, _ := cmd.Flags().GetBool("tokens"); tokens {
		out = renderer.Tokens(src)
	} else {
		res, err := renderer.Do(cmd.Context(), src, markdown.Options{TOC: cfg.TOCDefault, Mode: mode})
		if err != nil {
			return err
		}
		out = res
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cmd, os.Stdout)
	a := app.New(cfg, log)
	a.Start(cmd.Context())
	return a.ListenAndServe(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
