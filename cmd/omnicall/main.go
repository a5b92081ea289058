package main

import (
	"os"

	"github.com/omnicall/omnicall/cmd/omnicall/commands"
	"github.com/omnicall/omnicall/pkg/loaders/goscript"
	"github.com/omnicall/omnicall/pkg/loaders/mock"
	"github.com/omnicall/omnicall/pkg/loaders/wasm"
)

func main() {
	// Compiled-in adapters register up front; additional ones come in as
	// shared libraries through the plugin manager's search path.
	mock.Register()
	goscript.Register()
	wasm.Register()

	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}
