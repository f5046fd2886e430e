// Package cli is the terminal front end: it renders sessions live and drives
// the resting-state prompts (accept/reject, user input, candidate picks).
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
	"github.com/yosoyorhan/Fikir-motoru/internal/store"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fikirmotoru",
	Short: "Multi-persona brainstorming sessions in your terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrainstorm(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fikirmotoru %s\n", Version)
	},
}

var brainstormCmd = &cobra.Command{
	Use:   "brainstorm",
	Short: "Run a brainstorm session on a topic",
	RunE:  runBrainstorm,
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Suggest fresh brainstorm topics",
	RunE:  runTopics,
}

var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "List saved ideas from the vault, newest first",
	RunE:  runIdeas,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to Cerevo, the app assistant",
	RunE:  runChat,
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the brainstorming team",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nThe team:")
		for _, d := range persona.Definitions {
			fmt.Printf("  %-22s %s\n", d.Persona, d.Description)
		}
		fmt.Println()
	},
}

var (
	flagTopic     string
	flagSource    string
	flagEngine    string
	flagConcise   bool
	flagDeepDive  bool
	flagFlash     bool
	flagVault     bool
	flagBigBoss   bool
	flagInfluence int
	flagLeader    string
	flagMute      []string
	flagVerbose   bool
	flagLimit     int
	flagCursor    string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(brainstormCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&flagEngine, "engine", "e", "gemini", "Generation backend: gemini, claude, nova")

	for _, cmd := range []*cobra.Command{rootCmd, brainstormCmd} {
		cmd.Flags().StringVarP(&flagTopic, "topic", "t", "", "Brainstorm topic (Turkish)")
		cmd.Flags().StringVarP(&flagSource, "source", "s", "", "Source to center the session on (URL, PDF path, or text file path)")
		cmd.Flags().StringVarP(&flagEngine, "engine", "e", "gemini", "Generation backend: gemini, claude, nova")
		cmd.Flags().BoolVar(&flagConcise, "concise", false, "Short, punchy responses")
		cmd.Flags().BoolVar(&flagDeepDive, "deep-dive", false, "Deep analysis mode (forces long responses and the idea vault)")
		cmd.Flags().BoolVar(&flagFlash, "flash", false, "Flash mode: generate the whole session as one script")
		cmd.Flags().BoolVar(&flagVault, "vault", false, "Feed saved idea titles to the team so it avoids repeats")
		cmd.Flags().BoolVar(&flagBigBoss, "big-boss", false, "Big Boss mode: the Moderator defers to your input")
		cmd.Flags().IntVar(&flagInfluence, "influence", 50, "Big Boss influence on the team (0-100)")
		cmd.Flags().StringVar(&flagLeader, "leader", "", "Persona to dominate the session (e.g. Geliştirici)")
		cmd.Flags().StringSliceVar(&flagMute, "mute", nil, "Personas to silence for the session")
		cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")
	}

	topicsCmd.Flags().StringVarP(&flagEngine, "engine", "e", "gemini", "Generation backend: gemini, claude, nova")

	ideasCmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of results")
	ideasCmd.Flags().StringVar(&flagCursor, "cursor", "", "Pagination cursor from a previous run")
}

func Execute() error {
	return rootCmd.Execute()
}

// buildFocus validates --leader and --mute against the persona catalog.
func buildFocus() (persona.FocusMap, error) {
	focus := persona.FocusMap{}
	if flagLeader != "" {
		p := persona.Persona(flagLeader)
		if _, ok := persona.Lookup(p); !ok {
			return nil, fmt.Errorf("unknown persona %q: run 'fikirmotoru personas' for the team list", flagLeader)
		}
		focus[p] = persona.Leader
	}
	for _, name := range flagMute {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p := persona.Persona(name)
		if _, ok := persona.Lookup(p); !ok {
			return nil, fmt.Errorf("unknown persona %q: run 'fikirmotoru personas' for the team list", name)
		}
		focus[p] = persona.Muted
	}
	return focus, nil
}

func runTopics(cmd *cobra.Command, args []string) error {
	gen, err := gateway.New(flagEngine)
	if err != nil {
		return err
	}
	topics, err := gen.SuggestTopics(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("\nSuggested topics:")
	for _, t := range topics {
		fmt.Printf("  • %s\n", t)
	}
	fmt.Println()
	return nil
}

func runIdeas(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	awsCfg, err := store.NewAWSConfig(ctx, envOr("AWS_REGION", "us-east-1"))
	if err != nil {
		return err
	}
	clients := store.NewClients(awsCfg)
	ideas := store.NewStore(clients.DynamoDB, envOr("DYNAMODB_TABLE", "fikir-motoru-ideas"))

	items, nextCursor, err := ideas.ListIdeas(ctx, flagLimit, flagCursor)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("The vault is empty.")
		return nil
	}

	fmt.Printf("\n  %-28s %-30s %-18s %s\n", "ID", "TITLE", "STATUS", "CREATED")
	fmt.Printf("  %s\n", strings.Repeat("─", 90))
	for _, item := range items {
		fmt.Printf("  %-28s %-30s %-18s %s\n", item.IdeaID, clip(item.Title, 28), item.Status, item.CreatedAt)
	}
	if nextCursor != "" {
		fmt.Printf("\n  next cursor: %s\n", nextCursor)
	}
	fmt.Println()
	return nil
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
