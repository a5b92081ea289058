package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/omnicall/omnicall"
	"github.com/omnicall/omnicall/pkg/value"
)

var (
	inspectTag     string
	inspectScripts []string
	inspectJSON     bool
	inspectManifest string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List every loaded symbol with its signature",
	Long: `Load the given scripts or manifest and print every discovered symbol:
adapter, handle, function name, signature and async flag.

Examples:
  omnicall inspect --tag goscript --script handlers.go
  omnicall inspect --manifest project.json --json`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectTag, "tag", "", "adapter tag for the scripts")
	inspectCmd.Flags().StringArrayVar(&inspectScripts, "script", nil, "script to load before inspecting (repeatable)")
	inspectCmd.Flags().StringVar(&inspectManifest, "manifest", "", "load manifest instead of scripts")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the raw serialized inspection document")
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	switch {
	case inspectManifest != "":
		if _, err := omnicall.LoadFromConfiguration(inspectManifest); err != nil {
			return err
		}
	case len(inspectScripts) > 0:
		if inspectTag == "" {
			return fmt.Errorf("--tag is required with --script")
		}
		if _, err := omnicall.LoadFromFile(inspectTag, inspectScripts...); err != nil {
			return err
		}
	}

	if inspectJSON {
		doc, err := omnicall.Inspect()
		if err != nil {
			return err
		}
		fmt.Println(doc)
		return nil
	}

	return renderInspectTable()
}

// renderInspectTable walks the metadata tree and prints one row per
// discovered function.
func renderInspectTable() error {
	tree := omnicall.Default().Manager().Metadata()
	defer tree.Destroy()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Adapter", "Handle", "Function", "Signature", "Async"})
	table.SetAutoWrapText(false)

	for _, adapterPair := range tree.MapValue() {
		kv := adapterPair.ArrayValue()
		if len(kv) != 2 {
			continue
		}
		tag := kv[0].StringValue()
		for _, handle := range kv[1].ArrayValue() {
			handleName := handle.MapGet("name").StringValue()
			scope := handle.MapGet("scope")
			if scope == nil {
				continue
			}
			funcs := scope.MapGet("funcs")
			if funcs == nil {
				continue
			}
			for _, fn := range funcs.ArrayValue() {
				table.Append([]string{
					tag,
					handleName,
					fn.MapGet("name").StringValue(),
					renderSignature(fn.MapGet("signature")),
					fmt.Sprintf("%t", fn.MapGet("async").BoolValue()),
				})
			}
		}
	}

	table.Render()
	return nil
}

func renderSignature(sig *value.Value) string {
	if sig == nil {
		return "()"
	}
	out := "("
	for i, arg := range sig.MapGet("args").ArrayValue() {
		if i > 0 {
			out += ", "
		}
		out += arg.MapGet("name").StringValue() + " " + arg.MapGet("type").StringValue()
	}
	out += ")"
	if ret := sig.MapGet("ret"); ret != nil && ret.StringValue() != "" {
		out += " -> " + ret.StringValue()
	}
	return out
}
