package main

import (
	"fmt"
	"os"

	"github.com/launchforge/go-launchpad/cmd/launchpad/launcher"
)

func main() {
	if err := launcher.Launch(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
