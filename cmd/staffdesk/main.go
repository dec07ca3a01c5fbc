package main

import (
	"os"

	"github.com/goliatone/go-staffdesk/cmd/staffdesk/commands"
)

func main() {
	if err := commands.NewRootCmd(commands.NewAppContext()).Execute(); err != nil {
		os.Exit(1)
	}
}
