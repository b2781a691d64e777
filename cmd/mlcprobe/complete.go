package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mlcprobe/internal/completions"
	"mlcprobe/pkg/types"
)

func newCompleteCmd(a *app) *cobra.Command {
	var (
		endpoint  string
		model     string
		prompt    string
		transport string
		timeout   int
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "POST one prompt to the completions endpoint and print the parsed reply",
		Example: "  mlcprobe complete\n" +
			"  mlcprobe complete --endpoint http://127.0.0.1:8000 --prompt 'What is the capital of France?'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			if flags.Changed("model") {
				cfg.Model = model
			}
			if flags.Changed("prompt") {
				cfg.Prompt = prompt
			}
			if flags.Changed("transport") {
				cfg.Transport = transport
			}
			if flags.Changed("timeout") {
				cfg.TimeoutSeconds = timeout
			}

			var p completions.Poster
			d := time.Duration(cfg.TimeoutSeconds) * time.Second
			switch cfg.Transport {
			case "http":
				p = completions.NewClient(cfg.Endpoint, d, a.log)
			case "sdk":
				p = completions.NewSDKClient(cfg.Endpoint, d, a.log)
			default:
				return fmt.Errorf("unknown transport %q (want http or sdk)", cfg.Transport)
			}

			req := types.CompletionRequest{Model: cfg.Model, Prompt: cfg.Prompt}
			a.log.Info().Str("endpoint", cfg.Endpoint).Str("transport", cfg.Transport).Msg("posting completion")
			res, err := completions.Run(cmd.Context(), p, req, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			a.log.Debug().Stringer("kind", res.Kind).Msg("reply decoded")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&endpoint, "endpoint", "", "Base URL of the completions server (defaults MLCPROBE_ENDPOINT or http://127.0.0.1:8000)")
	f.StringVar(&model, "model", "", "Model identifier sent in the request")
	f.StringVar(&prompt, "prompt", "", "Prompt sent in the request")
	f.StringVar(&transport, "transport", "", "Client transport: http|sdk")
	f.IntVar(&timeout, "timeout", 0, "Request timeout in seconds (0 = wait indefinitely)")
	return cmd
}
