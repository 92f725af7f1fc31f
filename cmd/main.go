package main

import (
	"os"

	"github.com/okian/mvpshare/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
