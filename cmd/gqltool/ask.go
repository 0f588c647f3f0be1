package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/saturnines/graphql-agent-tool/pkg/adapter/anthropictool"
	"github.com/spf13/cobra"
)

const defaultModel = anthropic.ModelClaude3_7SonnetLatest

func askCmd() *cobra.Command {
	var (
		model    string
		maxTurns int
	)

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Let Claude answer a prompt using the toolset",
		Long: `Sends the prompt to the Anthropic Messages API with every tool in the
toolset attached and runs tool calls until the model stops asking for them.
The API key is read from ANTHROPIC_API_KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := anthropic.NewClient()
			tools := anthropictool.Tools(registry.Tools()...)
			conv := []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(strings.Join(args, " "))),
			}

			for turn := 0; turn < maxTurns; turn++ {
				msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
					Model:     anthropic.Model(model),
					MaxTokens: int64(1024),
					Messages:  conv,
					Tools:     tools,
				})
				if err != nil {
					return err
				}
				conv = append(conv, msg.ToParam())

				for _, block := range msg.Content {
					if tb, ok := block.AsAny().(anthropic.TextBlock); ok && tb.Text != "" {
						fmt.Fprintln(cmd.OutOrStdout(), tb.Text)
					}
				}

				results := anthropictool.HandleMessage(ctx, registry, msg)
				if len(results) == 0 {
					return nil
				}
				logger.Debug("tool results returned", "turn", turn, "count", len(results))
				conv = append(conv, anthropic.NewUserMessage(results...))
			}
			return fmt.Errorf("no final answer after %d turns", maxTurns)
		},
	}

	cmd.Flags().StringVar(&model, "model", string(defaultModel), "Anthropic model")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 8, "maximum model round trips")
	return cmd
}
