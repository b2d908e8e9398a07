package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/shixinhuang99/sxtetris/game"
)

func main() {
	debug := flag.Bool("debug", false, "write a debug log to the temp dir")
	seed := flag.Int64("seed", 0, "piece bag seed, 0 for random")
	noColor := flag.Bool("no-color", false, "render without colors")
	flag.Parse()

	EnableDebugLogging(*debug)
	defer closeDebugLog()
	loadEnv()
	game.Logf = debugScope("game")
	if *noColor || envString("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	DebugLogf("sxtetris start debug=%v seed=%d", *debug, *seed)

	program := tea.NewProgram(NewModel(Options{Seed: *seed, Audio: true}), tea.WithAltScreen(), tea.WithReportFocus())
	final, err := program.Run()
	if m, ok := final.(Model); ok {
		m.shutdown()
	}
	if err != nil {
		DebugLogf("program error: %v", err)
		fmt.Fprintln(os.Stderr, err)
		closeDebugLog()
		os.Exit(1)
	}
}
