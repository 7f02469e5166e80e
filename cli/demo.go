package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richinex/concord/model"
	"github.com/richinex/concord/storage"
)

// demoAgents are the sample agents used by the demo walk-through.
var demoAgents = []model.Agent{
	{
		ID:             "claude-001",
		Name:           "Claude",
		Capabilities:   []string{"analysis", "reasoning", "documentation"},
		Confidence:     0.9,
		Specialty:      "complex reasoning",
		ResponseTimeMs: 1200,
	},
	{
		ID:             "cursor-001",
		Name:           "Cursor",
		Capabilities:   []string{"coding", "debugging", "IDE integration"},
		Confidence:     0.85,
		Specialty:      "code generation",
		ResponseTimeMs: 800,
	},
	{
		ID:             "gemini-001",
		Name:           "Gemini",
		Capabilities:   []string{"research", "creativity", "multimodal"},
		Confidence:     0.88,
		Specialty:      "research and creativity",
		ResponseTimeMs: 1000,
	},
	{
		ID:             "qwen-001",
		Name:           "Qwen",
		Capabilities:   []string{"coding", "multilingual", "technical"},
		Confidence:     0.82,
		Specialty:      "technical solutions",
		ResponseTimeMs: 900,
	},
}

// demoContributions address the demo task from four perspectives.
var demoContributions = []struct {
	agentID string
	content string
	aspect  string
}{
	{"claude-001", "For implementing user authentication, we should consider security best practices including password hashing, secure session management, and protection against common attacks like CSRF and XSS.", "security"},
	{"cursor-001", "Here's a basic structure for an authentication controller with login and logout methods. I'll include proper error handling and input validation.", "implementation"},
	{"gemini-001", "Authentication systems should also consider user experience aspects like password reset flows, account recovery, and accessibility requirements.", "ux"},
	{"qwen-001", "From a technical perspective, we should use industry-standard libraries for JWT handling and consider rate limiting to prevent brute force attacks.", "technical"},
	{"claude-001", "Don't forget about compliance requirements like GDPR for data protection and audit logging for security monitoring.", "compliance"},
}

const demoContext = "Implementing user authentication system"

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Register sample agents and walk through every merge strategy",
		Run: func(cmd *cobra.Command, args []string) {
			sys, closeSink, err := newSystem()
			if err != nil {
				exitErr(err)
			}
			defer closeSink()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Registering agents...")
			for _, a := range demoAgents {
				if err := sys.RegisterAgent(a); err != nil {
					exitErr(err)
				}
				fmt.Fprintf(out, "  registered %s (%s)\n", a.Name, a.Specialty)
			}

			fmt.Fprintln(out, "\nSubmitting contributions...")
			for _, c := range demoContributions {
				_, err := sys.SubmitContribution(c.agentID, c.content, storage.SubmitOptions{
					Metadata: map[string]any{model.MetadataAspect: c.aspect},
				})
				if err != nil {
					exitErr(err)
				}
				fmt.Fprintf(out, "  contribution from %s submitted\n", c.agentID)
			}

			for _, strategy := range model.Strategies() {
				fmt.Fprintf(out, "\n=== %s ===\n", strategy)
				result, err := sys.MergeAll(strategy, demoContext)
				if err != nil {
					exitErr(err)
				}
				printResult(out, result)
			}
		},
	}
}
