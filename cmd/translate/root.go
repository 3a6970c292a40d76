package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"translation-agent/backend/internal/client"
	"translation-agent/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text through the relay server",
	Long: `Translate text with the reflective translation relay: an initial
translation, a critique of it, and an improved translation, each streamed
as it is produced.

Text is taken from the arguments, or from stdin when none are given.
Every flag can also be set through a TRANSLATE_ environment variable,
for example TRANSLATE_SERVER or TRANSLATE_API_KEY.`,
	Version:       config.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTranslate,
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.translate.yaml)")

	f := rootCmd.Flags()
	f.String("server", "http://localhost:8080", "relay server base URL")
	f.String("source", "", "source language (name or code)")
	f.String("target", "", "target language (name or code)")
	f.String("country", "", "country or region for target-language style")
	f.String("llm", "", "provider: openai, gemini, anthropic, compatible")
	f.String("model", "", "model override")
	f.String("format", "sse", "wire format: sse or text")
	f.String("api-key", "", "API key for the provider named by --llm")
	f.Bool("final-only", false, "print only the improved translation")

	viper.SetEnvPrefix("TRANSLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(f); err != nil {
		panic(err)
	}
}

// initConfig reads the optional config file. Flags and TRANSLATE_ env vars
// take precedence over it.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".translate")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: read config:", err)
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runTranslate(cmd *cobra.Command, args []string) error {
	text, err := readText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	req := client.Request{
		Text:    text,
		Source:  viper.GetString("source"),
		Target:  viper.GetString("target"),
		Country: viper.GetString("country"),
		LLM:     strings.ToLower(viper.GetString("llm")),
		Model:   viper.GetString("model"),
		Format:  viper.GetString("format"),
	}
	if key := viper.GetString("api-key"); key != "" {
		if req.LLM == "" {
			return errors.New("--api-key requires --llm")
		}
		req.APIKeys = map[string]string{req.LLM: key}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return translate(ctx, client.NewClient(viper.GetString("server"), nil), req, cmd.OutOrStdout(), viper.GetBool("final-only"))
}

func translate(ctx context.Context, c *client.Client, req client.Request, out io.Writer, finalOnly bool) error {
	var onUpdate client.UpdateFunc
	p := newPrinter(out)
	if !finalOnly {
		onUpdate = p.Update
	}

	res, err := c.Translate(ctx, req, onUpdate)
	if finalOnly {
		if res.Improved != "" {
			fmt.Fprintln(out, res.Improved)
		}
	} else {
		p.Finish(res.Cached)
	}
	return err
}

func readText(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text to translate")
	}
	return text, nil
}
