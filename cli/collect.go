package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richinex/concord/collect"
	"github.com/richinex/concord/config"
	"github.com/richinex/concord/llm"
	"github.com/richinex/concord/model"
)

func collectCmd() *cobra.Command {
	var (
		providerNames []string
		strategyName  string
	)

	cmd := &cobra.Command{
		Use:   "collect [task]",
		Short: "Fan a task out to live model providers and merge the replies",
		Long: `Query each named provider with the task in parallel, submit every reply
as a contribution, and merge the batch. API keys come from the
provider's usual environment variable (OPENAI_API_KEY, ANTHROPIC_API_KEY,
DEEPSEEK_API_KEY, GEMINI_API_KEY).`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			task := args[0]

			strategy, err := model.ParseStrategy(strategyName)
			if err != nil {
				exitErr(err)
			}

			settings, err := config.Load()
			if err != nil {
				exitErr(err)
			}

			sys, closeSink, err := newSystem()
			if err != nil {
				exitErr(err)
			}
			defer closeSink()

			collector := collect.NewCollector(sys)
			for _, name := range providerNames {
				provider, err := llm.FromEnv(name, llm.Options{
					MaxTokens:   settings.LLM.MaxTokens,
					Temperature: settings.LLM.Temperature,
				})
				if err != nil {
					exitErr(err)
				}

				agentID := provider.Name() + "-" + provider.Model()
				if err := sys.RegisterAgent(model.Agent{
					ID:           agentID,
					Name:         provider.Name(),
					Capabilities: []string{"completion"},
					Confidence:   0.8,
					Specialty:    provider.Name(),
				}); err != nil {
					exitErr(err)
				}
				collector.Bind(agentID, provider)
			}

			out := cmd.OutOrStdout()
			results, err := collector.Collect(cmd.Context(), task)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "  %s: failed: %v\n", r.AgentID, r.Err)
					continue
				}
				fmt.Fprintf(out, "  %s: contribution %s\n", r.AgentID, r.Hash)
			}
			if err != nil {
				exitErr(err)
			}

			result, err := sys.MergeAll(strategy, task)
			if err != nil {
				exitErr(err)
			}
			printResult(out, result)
		},
	}

	cmd.Flags().StringArrayVarP(&providerNames, "provider", "p", nil, "provider to query (repeatable)")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "synthesis", "merge strategy")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}
