package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
	"github.com/yosoyorhan/Fikir-motoru/internal/gateway"
)

func runChat(cmd *cobra.Command, args []string) error {
	gen, err := gateway.New(flagEngine)
	if err != nil {
		return err
	}

	r := newRenderer(os.Stdout, false)
	engine, err := brainstorm.New(brainstorm.Config{
		Generator: gen,
		Callback:  r.Handle,
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	if err != nil {
		return err
	}

	fmt.Println("Cerevo hazır. Çıkmak için boş satır bırakın.")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		text := readLine(in)
		if text == "" {
			return nil
		}
		if _, err := engine.AssistantChat(cmd.Context(), text); err != nil {
			return err
		}
	}
}
