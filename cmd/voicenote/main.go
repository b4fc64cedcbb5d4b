package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/yok-tottii/voicenote/internal/cli"
)

func init() {
	// systray and the macOS permission prompt need the main thread
	runtime.LockOSThread()
}

func main() {
	if err := cli.NewRootCmd(&cli.Dependencies{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "voicenote: %v\n", err)
		os.Exit(1)
	}
}
