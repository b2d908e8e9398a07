package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shixinhuang99/sxtetris/game"
)

type gameKeyMap struct {
	Left        key.Binding
	Right       key.Binding
	SoftDrop    key.Binding
	HardDrop    key.Binding
	RotateRight key.Binding
	RotateLeft  key.Binding
	Pause       key.Binding
	Back        key.Binding
}

type menuKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Back    key.Binding
	Quit    key.Binding
	Bigger  key.Binding
	Smaller key.Binding
}

var gameKeys = gameKeyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	SoftDrop: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "soft drop"),
	),
	HardDrop: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "hard drop"),
	),
	RotateRight: key.NewBinding(
		key.WithKeys("up", "x", "k"),
		key.WithHelp("↑/x", "rotate right"),
	),
	RotateLeft: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "rotate left"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "menu"),
	),
}

var menuKeys = menuKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Left:    key.NewBinding(key.WithKeys("left", "h")),
	Right:   key.NewBinding(key.WithKeys("right", "l")),
	Select:  key.NewBinding(key.WithKeys("enter")),
	Back:    key.NewBinding(key.WithKeys("esc", "q")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	Bigger:  key.NewBinding(key.WithKeys("ctrl+=", "ctrl++")),
	Smaller: key.NewBinding(key.WithKeys("ctrl+-", "ctrl+_")),
}

// inputForKey maps a key press on the game screen to a game input.
func inputForKey(msg tea.KeyMsg) (game.Input, bool) {
	switch {
	case key.Matches(msg, gameKeys.Left):
		return game.InputLeft, true
	case key.Matches(msg, gameKeys.Right):
		return game.InputRight, true
	case key.Matches(msg, gameKeys.SoftDrop):
		return game.InputSoftDrop, true
	case key.Matches(msg, gameKeys.HardDrop):
		return game.InputHardDrop, true
	case key.Matches(msg, gameKeys.RotateRight):
		return game.InputRotateRight, true
	case key.Matches(msg, gameKeys.RotateLeft):
		return game.InputRotateLeft, true
	case key.Matches(msg, gameKeys.Pause):
		return game.InputPause, true
	case key.Matches(msg, gameKeys.Back):
		return game.InputBack, true
	}
	return 0, false
}

func (k gameKeyMap) helpLines() []string {
	bindings := []key.Binding{k.Left, k.Right, k.SoftDrop, k.HardDrop, k.RotateRight, k.RotateLeft, k.Pause, k.Back}
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, h.Key+": "+h.Desc)
	}
	return lines
}
