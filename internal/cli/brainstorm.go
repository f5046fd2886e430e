package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yosoyorhan/Fikir-motoru/internal/art"
	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
	"github.com/yosoyorhan/Fikir-motoru/internal/ingest"
	"github.com/yosoyorhan/Fikir-motoru/internal/store"
)

func runBrainstorm(cmd *cobra.Command, args []string) error {
	if flagTopic == "" {
		return fmt.Errorf("--topic (-t) is required")
	}
	if flagInfluence < 0 || flagInfluence > 100 {
		return fmt.Errorf("--influence must be between 0 and 100 (got %d)", flagInfluence)
	}

	focus, err := buildFocus()
	if err != nil {
		return err
	}

	logLevel := slog.LevelWarn
	if flagVerbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	gen, err := gateway.New(flagEngine)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// A source document becomes the session's main focus.
	mainFocus := ""
	if flagSource != "" {
		fmt.Printf("Reading source %s...\n", flagSource)
		mainFocus, err = ingest.MainFocus(ctx, flagSource)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
	}

	// The vault needs DynamoDB; without a table the session runs in-memory
	// and accepted ideas are printed instead of saved.
	var ideaStore brainstorm.IdeaStore
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		awsCfg, err := store.NewAWSConfig(ctx, envOr("AWS_REGION", "us-east-1"))
		if err != nil {
			return err
		}
		clients := store.NewClients(awsCfg)
		ideas := store.NewStore(clients.DynamoDB, table)
		var archive *store.Archive
		if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
			archive = store.NewArchive(clients.S3, bucket)
		}
		ideaStore = store.NewVault(ideas, archive, logger)
	} else if flagVault {
		return fmt.Errorf("--vault requires the DYNAMODB_TABLE environment variable")
	}

	r := newRenderer(os.Stdout, flagVerbose)

	engine, err := brainstorm.New(brainstorm.Config{
		Generator: gen,
		Store:     ideaStore,
		Artist:    art.New(),
		Callback:  r.Handle,
		Logger:    logger,
		TeamDelay: brainstorm.DefaultTeamDelay,
	})
	if err != nil {
		return err
	}

	// Ctrl+C stops the session but leaves the transcript on screen.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		engine.CancelSession()
	}()

	settings := brainstorm.Settings{
		Topic:            flagTopic,
		Focus:            focus,
		Concise:          flagConcise,
		DeepDive:         flagDeepDive,
		Flash:            flagFlash,
		RememberVault:    flagVault,
		BigBossActive:    flagBigBoss,
		BigBossInfluence: flagInfluence,
		MainFocus:        mainFocus,
	}

	if err := engine.StartSession(ctx, settings); err != nil {
		return err
	}

	return promptLoop(ctx, engine, bufio.NewScanner(os.Stdin))
}

// promptLoop drives the session's resting states until it returns to Idle.
func promptLoop(ctx context.Context, engine *brainstorm.Engine, in *bufio.Scanner) error {
	for {
		switch engine.State() {
		case brainstorm.StateFinalizing:
			if err := promptFoundIdea(ctx, engine, in); err != nil {
				return err
			}
		case brainstorm.StateAwaitingUserInput:
			if err := promptUserInput(ctx, engine, in); err != nil {
				return err
			}
		case brainstorm.StateSessionEnded:
			if err := promptCandidates(ctx, engine, in); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func promptFoundIdea(ctx context.Context, engine *brainstorm.Engine, in *bufio.Scanner) error {
	snap := engine.Snapshot()
	if snap.FoundIdea != nil {
		fmt.Printf("\n💡 %s\n%s\n", snap.FoundIdea.Title, snap.FoundIdea.Description)
	}
	fmt.Print("\nBu fikri kaydedelim mi? [e]vet / [h]ayır devam / [q] bitir: ")
	switch readLine(in) {
	case "e", "evet":
		idea, err := engine.AcceptFoundIdea(ctx)
		if err != nil {
			// The engine already showed the failure; the idea stays pending.
			return nil
		}
		fmt.Printf("Kaydedildi: %s (%s)\n", idea.Title, idea.ID)
		return nil
	case "h", "hayır", "hayir":
		return engine.RejectFoundIdea(ctx)
	default:
		engine.EndSession()
		return nil
	}
}

func promptUserInput(ctx context.Context, engine *brainstorm.Engine, in *bufio.Scanner) error {
	fmt.Print("\nSöz sizde > ")
	text := readLine(in)
	if text == "" {
		engine.CancelSession()
		return nil
	}
	return engine.SubmitHumanInput(ctx, text)
}

func promptCandidates(ctx context.Context, engine *brainstorm.Engine, in *bufio.Scanner) error {
	snap := engine.Snapshot()
	if len(snap.Candidates) == 0 {
		engine.EndSession()
		return nil
	}

	fmt.Println("\nAday fikirler:")
	for i, c := range snap.Candidates {
		fmt.Printf("  %d. %s — %s\n", i+1, c.Title, c.Summary)
	}
	fmt.Print("\nDetaylandırmak için numara, [d]evam et, veya Enter ile bitir: ")
	answer := readLine(in)

	switch answer {
	case "":
		engine.EndSession()
		return nil
	case "d", "devam":
		return engine.ContinueBrainstorming(ctx)
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(snap.Candidates) {
		fmt.Println("Geçersiz seçim.")
		return nil
	}
	picked := snap.Candidates[n-1]

	detailed, err := engine.SelectCandidateForDetail(ctx, picked.ID)
	if err != nil {
		return nil
	}
	fmt.Printf("\n%s\n\n%s\n", detailed.Title, detailed.Details)

	fmt.Print("\nBu detaylı fikri kasaya kaydedelim mi? [e]vet / Enter ile geç: ")
	if answer := readLine(in); answer == "e" || answer == "evet" {
		if saved, err := engine.SaveDetailedIdea(ctx, *detailed); err == nil {
			fmt.Printf("Kaydedildi: %s (%s)\n", saved.Title, saved.ID)
		}
	}
	return nil
}

func readLine(in *bufio.Scanner) string {
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
