package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omnicall/omnicall"
)

var (
	callTag     string
	callScripts []string
	callNamed   string
)

var callCmd = &cobra.Command{
	Use:   "call NAME [arg...]",
	Short: "Load scripts and call one function",
	Long: `Load the given scripts, dispatch one call and print the result.

Arguments parse as long, double, bool or string in that order; quote
anything that must stay a string.

Examples:
  omnicall call --tag goscript --script mult.go Multiply 5 15
  omnicall call --tag wasm --script add.wasm add 3 4
  omnicall call --tag goscript --script sum.go --named '{"a":10,"b":2}' Sum`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&callTag, "tag", "", "adapter tag for the scripts")
	callCmd.Flags().StringArrayVar(&callScripts, "script", nil, "script to load before calling (repeatable)")
	callCmd.Flags().StringVar(&callNamed, "named", "", "serialized named-argument document instead of positional args")
}

// parseArg maps a CLI token onto the closest native value.
func parseArg(token string) any {
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(token); err == nil {
		return b
	}
	return strings.Trim(token, `"'`)
}

func runCall(cmd *cobra.Command, args []string) error {
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

	if len(callScripts) > 0 {
		if callTag == "" {
			return fmt.Errorf("--tag is required with --script")
		}
		if _, err := omnicall.LoadFromFile(callTag, callScripts...); err != nil {
			return err
		}
	}

	name := args[0]

	if callNamed != "" {
		out, err := omnicall.CallMS(name, []byte(callNamed))
		if err != nil {
			return err
		}
		defer out.Destroy()
		fmt.Println(out.String())
		return nil
	}

	callArgs := make([]any, 0, len(args)-1)
	for _, token := range args[1:] {
		callArgs = append(callArgs, parseArg(token))
	}

	out, err := omnicall.Call(name, callArgs...)
	if err != nil {
		return err
	}
	defer out.Destroy()

	if out.IsError() {
		return fmt.Errorf("call failed: %s", out.String())
	}
	fmt.Println(out.String())
	return nil
}
