package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/richinex/concord/model"
	"github.com/richinex/concord/storage"
)

func mergeCmd() *cobra.Command {
	var (
		strategyName string
		mergeContext string
		aspects      []string
	)

	cmd := &cobra.Command{
		Use:   "merge [files...]",
		Short: "Merge contribution files, one agent per file",
		Long: `Read each file as one contribution from a synthetic agent named after
the file, then merge them with the chosen strategy. Aspects are assigned
to files positionally via repeated --aspect flags.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			strategy, err := model.ParseStrategy(strategyName)
			if err != nil {
				exitErr(err)
			}

			sys, closeSink, err := newSystem()
			if err != nil {
				exitErr(err)
			}
			defer closeSink()

			for i, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					exitErr(fmt.Errorf("failed to read %s: %w", path, err))
				}

				id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				agent := model.Agent{
					ID:           id,
					Name:         id,
					Capabilities: []string{"text"},
					Confidence:   0.8,
				}
				if err := sys.RegisterAgent(agent); err != nil {
					exitErr(err)
				}

				opts := storage.SubmitOptions{}
				if i < len(aspects) {
					opts.Metadata = map[string]any{model.MetadataAspect: aspects[i]}
				}
				if _, err := sys.SubmitContribution(id, string(content), opts); err != nil {
					exitErr(err)
				}
			}

			result, err := sys.MergeAll(strategy, mergeContext)
			if err != nil {
				exitErr(err)
			}
			printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "synthesis", "merge strategy")
	cmd.Flags().StringVarP(&mergeContext, "context", "c", "", "merge context used for relevance scoring")
	cmd.Flags().StringArrayVar(&aspects, "aspect", nil, "aspect tag for the file at the same position")
	return cmd
}
