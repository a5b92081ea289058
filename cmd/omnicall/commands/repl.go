package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/omnicall/omnicall"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over the call surface",
	Long: `An interactive shell for loading scripts and calling functions.

Commands inside the shell:
  load TAG PATH...      load scripts through an adapter
  call NAME [arg...]    dispatch a positional call
  inspect               list loaded symbols
  help                  show this help
  exit                  leave the shell`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	teardown, err := bootHost(ctx, cfg)
	if err != nil {
		return err
	}
	defer teardown()

	fmt.Printf("omnicall %s. Type 'help' for commands, 'exit' to leave.\n", Version)

	for {
		prompt := promptui.Prompt{Label: "omnicall"}
		line, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println(replCmd.Long)
		case "load":
			if len(fields) < 3 {
				fmt.Println("usage: load TAG PATH...")
				continue
			}
			if _, err := omnicall.LoadFromFile(fields[1], fields[2:]...); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("loaded")
		case "inspect":
			doc, err := omnicall.Inspect()
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(doc)
		case "call":
			if len(fields) < 2 {
				fmt.Println("usage: call NAME [arg...]")
				continue
			}
			callArgs := make([]any, 0, len(fields)-2)
			for _, token := range fields[2:] {
				callArgs = append(callArgs, parseArg(token))
			}
			out, err := omnicall.Call(fields[1], callArgs...)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(out.String())
			out.Destroy()
		default:
			fmt.Printf("unknown command %q, try 'help'\n", fields[0])
		}
	}
}
