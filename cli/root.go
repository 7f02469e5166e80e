// Package cli implements the concord command-line front-end.
//
// The CLI is an external collaborator: it wires sinks and providers
// together and calls the public operation set; no merge logic lives here.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/richinex/concord/config"
	"github.com/richinex/concord/events"
	"github.com/richinex/concord/model"
	"github.com/richinex/concord/orchestration"
	"github.com/richinex/concord/synthesis"
	"github.com/richinex/concord/validate"
)

// NewRootCmd builds the concord root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "concord",
		Short: "Merge contributions from multiple agents into one output",
		Long: `Concord collects contributions from independent agents addressing the
same task and combines them with a selectable merge strategy:

- synthesis: combine deduplicated chunks from all contributions
- consensus: find the largest cluster of agreeing contributions
- complementary: combine one representative per aspect
- competitive_evaluation: score everything, select the best`,
	}

	root.AddCommand(demoCmd())
	root.AddCommand(mergeCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(eventsCmd())
	return root
}

// newSystem builds a System from environment settings, attaching a JSONL
// or SQLite sink when configured. The returned closer releases the sink.
func newSystem() (*orchestration.System, func(), error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var sink events.Sink
	closer := func() {}
	switch {
	case settings.EventDB != "":
		s, err := events.OpenSQLiteSink(settings.EventDB)
		if err != nil {
			return nil, nil, err
		}
		sink, closer = s, func() { s.Close() }
	case settings.EventLog != "":
		s, err := events.NewJSONLSink(settings.EventLog)
		if err != nil {
			return nil, nil, err
		}
		sink, closer = s, func() { s.Close() }
	}

	sys, err := orchestration.NewSystem(orchestration.Config{
		Weights: validate.Weights{
			Completeness: settings.Validation.CompletenessWeight,
			Coherence:    settings.Validation.CoherenceWeight,
			Relevance:    settings.Validation.RelevanceWeight,
			Consistency:  settings.Validation.ConsistencyWeight,
		},
		Synthesis: synthesis.Config{
			SimilarityThreshold: settings.Synthesis.SimilarityThreshold,
			ClusterThreshold:    settings.Synthesis.ClusterThreshold,
			MinClusterSize:      settings.Synthesis.MinClusterSize,
			LowConfidenceCap:    settings.Synthesis.LowConfidenceCap,
		},
		Sink: sink,
	})
	if err != nil {
		closer()
		return nil, nil, err
	}
	return sys, closer, nil
}

// printResult renders a merge result for terminal consumption.
func printResult(w io.Writer, result model.MergeResult) {
	fmt.Fprintf(w, "Strategy:            %s\n", result.Strategy)
	fmt.Fprintf(w, "Confidence:          %.2f\n", result.ConfidenceScore)
	fmt.Fprintf(w, "Contributing agents: %v\n", result.ContributingAgents)
	if v, ok := result.Metadata["disagreement"].(bool); ok && v {
		fmt.Fprintln(w, "Note: no consensus cluster formed; result is a low-confidence fallback")
	}
	fmt.Fprintf(w, "\n%s\n", result.MergedContent)
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
