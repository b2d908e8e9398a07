package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shixinhuang99/sxtetris/game"
)

type Theme struct {
	Name        string
	BorderColor lipgloss.Color
	TextColor   lipgloss.Color
	AccentColor lipgloss.Color
	// PieceColors is indexed by kind, I through Z.
	PieceColors [7]lipgloss.Color
}

var themes = []Theme{
	{
		Name:        "Classic",
		BorderColor: lipgloss.Color("252"),
		TextColor:   lipgloss.Color("247"),
		AccentColor: lipgloss.Color("220"),
		PieceColors: [7]lipgloss.Color{"51", "21", "208", "226", "46", "93", "196"},
	},
	{
		Name:        "Dusk",
		BorderColor: lipgloss.Color("97"),
		TextColor:   lipgloss.Color("183"),
		AccentColor: lipgloss.Color("212"),
		PieceColors: [7]lipgloss.Color{"141", "63", "168", "222", "114", "177", "204"},
	},
	{
		Name:        "Glacier",
		BorderColor: lipgloss.Color("31"),
		TextColor:   lipgloss.Color("153"),
		AccentColor: lipgloss.Color("87"),
		PieceColors: [7]lipgloss.Color{"123", "32", "110", "195", "80", "68", "117"},
	},
	{
		Name:        "Moss",
		BorderColor: lipgloss.Color("58"),
		TextColor:   lipgloss.Color("151"),
		AccentColor: lipgloss.Color("149"),
		PieceColors: [7]lipgloss.Color{"108", "29", "136", "186", "70", "101", "143"},
	},
	{
		Name:        "Paper",
		BorderColor: lipgloss.Color("244"),
		TextColor:   lipgloss.Color("240"),
		AccentColor: lipgloss.Color("231"),
		PieceColors: [7]lipgloss.Color{"253", "243", "249", "255", "246", "251", "241"},
	},
}

func themeIndexByName(name string) int {
	for i, theme := range themes {
		if theme.Name == name {
			return i
		}
	}
	return -1
}

func (t Theme) pieceColor(kind game.Kind) lipgloss.Color {
	if !kind.Solid() {
		return t.TextColor
	}
	return t.PieceColors[kind-1]
}

const (
	scoresPageSize = 10
	infoWidth      = 24
	maxNameLength  = 12
)

var flashColor = lipgloss.Color("15")

func viewMenu(m Model) string {
	theme := themes[m.themeIndex]
	actions := m.menuActions()
	items := make([]string, 0, len(actions))
	for _, action := range actions {
		items = append(items, action.String())
	}
	content := renderMenu("SXTETRIS", items, m.menuIndex, "enter: select  q: quit", theme)
	return center(m.width, m.height, content)
}

func viewThemes(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(themes))
	for _, t := range themes {
		items = append(items, t.Name)
	}
	preview := renderThemePreview(theme)
	menu := renderMenu("Themes", items, m.themeIndex, "enter: apply  esc: back", theme)
	return center(m.width, m.height, lipgloss.JoinVertical(lipgloss.Left, preview, "", menu))
}

func renderThemePreview(theme Theme) string {
	pieces := make([]string, 0, len(game.Kinds))
	for _, kind := range game.Kinds {
		pieces = append(pieces, lipgloss.NewStyle().MarginRight(1).Render(renderMiniPiece(kind, theme, 1)))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, pieces[:4]...)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, pieces[4:]...)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle(theme).Render("Preview"), top, bottom)
}

func viewScores(m Model) string {
	theme := themes[m.themeIndex]
	var b strings.Builder
	b.WriteString(titleStyle(theme).Render("High Scores"))
	b.WriteString("\n\n")
	if len(m.scores) == 0 {
		b.WriteString("No scores yet.\n")
	} else {
		start := m.scoresOffset
		end := min(start+scoresPageSize, len(m.scores))
		for i, score := range m.scores[start:end] {
			fmt.Fprintf(&b, "%2d. %-12s %8d  %3d lines  L%-2d  %s\n", start+i+1, score.Name, score.Score, score.Lines, score.Level, score.When)
		}
		if len(m.scores) > scoresPageSize {
			b.WriteString("\n")
			b.WriteString(helpStyle(theme).Render("up/down: scroll"))
			b.WriteString("\n")
		}
	}
	if m.syncWarning != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle().Render(m.syncWarning))
		b.WriteString("\n")
	}
	if m.syncLoading {
		b.WriteString("\n")
		b.WriteString(helpStyle(theme).Render(renderSyncLoader(m.syncDots)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle(theme).Render("enter: back"))
	return center(m.width, m.height, b.String())
}

func viewConfig(m Model) string {
	theme := themes[m.themeIndex]
	items := make([]string, 0, len(configItems))
	for _, item := range configItems {
		items = append(items, fmt.Sprintf("%s: %s", item, m.configValue(item)))
	}
	content := renderMenu("Config", items, m.configIndex, "enter: toggle  left/right: adjust  esc: back", theme)
	return center(m.width, m.height, content)
}

func (m Model) configValue(item configItem) string {
	onOff := func(v bool) string {
		if v {
			return "ON"
		}
		return "OFF"
	}
	switch item {
	case configSound:
		return onOff(m.config.Sound)
	case configMusic:
		if m.config.Music && m.musicPath() == "" {
			return "ON (no file)"
		}
		return onOff(m.config.Music)
	case configVolume:
		return fmt.Sprintf("%d%%", clampVolumePercent(m.config.Volume))
	case configGhost:
		return onOff(m.config.Ghost)
	case configAnimations:
		return onOff(m.config.Animations)
	case configScale:
		return fmt.Sprintf("%dx", clampScale(m.config.Scale))
	case configSync:
		if m.sync == nil {
			return "N/A"
		}
		return onOff(m.config.Sync)
	}
	return ""
}

func viewNameEntry(m Model) string {
	theme := themes[m.themeIndex]
	stats := m.session.Stats()
	var b strings.Builder
	b.WriteString(titleStyle(theme).Render("Game Over"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score: %d  Lines: %d  Level: %d\n\n", stats.Score, stats.Lines, stats.Level)
	b.WriteString("Name: ")
	b.WriteString(highlightStyle(theme).Render(m.nameInput + "_"))
	b.WriteString("\n\n")
	b.WriteString(helpStyle(theme).Render("enter: save  esc: skip"))
	return center(m.width, m.height, b.String())
}

func viewGame(m Model) string {
	theme := themes[m.themeIndex]
	scale := clampScale(m.config.Scale)
	minWidth, minHeight := minGameSize(scale)
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		message := fmt.Sprintf("Terminal too small. Need %dx%d, have %dx%d.", minWidth, minHeight, m.width, m.height)
		return center(m.width, m.height, message)
	}
	board := renderBoard(m.session, theme, scale, m.config.Ghost, m.config.Animations)
	var side string
	if m.session.Phase() == game.Paused {
		side = renderPauseMenu(m.pauseIndex, theme)
	} else {
		side = renderInfo(m.session, theme, scale)
	}
	return center(m.width, m.height, lipgloss.JoinHorizontal(lipgloss.Top, board, side))
}

// renderBoard draws the visible rows only. Cells in rows being cleared that
// the wipe has not reached yet flash white when animations are on, and the
// wipe leaves a short trail of sparks behind it.
func renderBoard(s *game.Session, theme Theme, scale int, showGhost, animations bool) string {
	board := s.Board()
	active := s.Active()
	ghost := s.Ghost()
	wipe := board.LineClear()
	clearing := make(map[int]bool, len(wipe.Rows))
	if wipe.InProgress {
		for _, y := range wipe.Rows {
			clearing[y] = true
		}
	}

	width := cellWidth(scale)
	blank := strings.Repeat(" ", width)
	dots := strings.Repeat(".", width)
	border := lipgloss.NewStyle().Foreground(theme.BorderColor)
	edge := border.Render("+" + strings.Repeat("-", game.Cols*width) + "+")

	var b strings.Builder
	b.WriteString(edge)
	b.WriteString("\n")
	for y := game.BufferRows; y < game.Rows; y++ {
		var row strings.Builder
		row.WriteString(border.Render("|"))
		for x := 0; x < game.Cols; x++ {
			switch {
			case clearing[y] && animations && x >= wipe.Cursor:
				row.WriteString(lipgloss.NewStyle().Background(flashColor).Render(blank))
			case clearing[y] && animations && wipe.Cursor-x <= sparkTrail:
				row.WriteString(renderSpark(x, y, wipe.Cursor, width, theme))
			case active.Occupies(x, y):
				style := lipgloss.NewStyle().Background(theme.pieceColor(active.Kind))
				if active.Blink {
					style = style.Faint(true).Background(lipgloss.Color("240"))
				}
				row.WriteString(style.Render(blank))
			case board.Cell(x, y).Solid():
				row.WriteString(lipgloss.NewStyle().Background(theme.pieceColor(board.Cell(x, y))).Render(blank))
			case showGhost && ghost.Occupies(x, y):
				row.WriteString(lipgloss.NewStyle().Foreground(theme.pieceColor(active.Kind)).Faint(true).Render(dots))
			default:
				row.WriteString(blank)
			}
		}
		row.WriteString(border.Render("|"))
		line := row.String()
		for repeat := 0; repeat < scale; repeat++ {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString(edge)
	return b.String()
}

const sparkTrail = 3

var sparkGlyphs = []string{"*", "+", "'"}

// renderSpark picks a glyph and a piece color from the cell and the wipe
// position, so the trail shimmers as the wipe moves.
func renderSpark(x, y, cursor, width int, theme Theme) string {
	glyph := sparkGlyphs[(x+y+cursor)%len(sparkGlyphs)]
	color := theme.PieceColors[(3*x+y+cursor)%len(theme.PieceColors)]
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(glyph + strings.Repeat(" ", width-1))
}

func renderInfo(s *game.Session, theme Theme, scale int) string {
	stats := s.Stats()
	pad := lipgloss.NewStyle().PaddingLeft(2).Width(infoWidth)
	lines := []string{
		titleStyle(theme).Render("Next"),
		renderMiniPiece(s.Next(), theme, scale),
		"",
		fmt.Sprintf("Score: %d", stats.Score),
		fmt.Sprintf("Lines: %d", stats.Lines),
		fmt.Sprintf("Level: %d", stats.Level),
	}
	if stats.Combo > 0 {
		lines = append(lines, highlightStyle(theme).Render(fmt.Sprintf("Combo x%d", stats.Combo)))
	}
	lines = append(lines, "")
	switch s.Phase() {
	case game.Countdown:
		lines = append(lines, highlightStyle(theme).Render(fmt.Sprintf("Resuming in %d", s.Countdown())), "")
	case game.Over:
		lines = append(lines, warningStyle().Render("GAME OVER"), "")
	}
	for _, help := range gameKeys.helpLines() {
		lines = append(lines, helpStyle(theme).Render(help))
	}
	return pad.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

var pauseItems = []string{"Resume", "New Game", "Main Menu"}

const (
	pauseResume = iota
	pauseNewGame
	pauseMainMenu
)

func renderPauseMenu(selected int, theme Theme) string {
	menu := renderMenu("Paused", pauseItems, selected, "p: resume", theme)
	return lipgloss.NewStyle().PaddingLeft(2).Width(infoWidth).Render(menu)
}

func renderMiniPiece(kind game.Kind, theme Theme, scale int) string {
	width := cellWidth(scale)
	blank := strings.Repeat(" ", width)
	shape := game.Shape(kind, game.Spawn)
	filled := lipgloss.NewStyle().Background(theme.pieceColor(kind))
	var b strings.Builder
	for y := 0; y < 2; y++ {
		var row strings.Builder
		for x := 0; x < 4; x++ {
			if kind.Solid() && shape.Contains(x, y+miniRowOffset(kind)) {
				row.WriteString(filled.Render(blank))
			} else {
				row.WriteString(blank)
			}
		}
		for repeat := 0; repeat < scale; repeat++ {
			b.WriteString(row.String())
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// The I piece sits on the second row of its box in spawn orientation.
func miniRowOffset(kind game.Kind) int {
	if kind == game.I {
		return 1
	}
	return 0
}

func minGameSize(scale int) (int, int) {
	width := game.Cols*cellWidth(scale) + 2 + infoWidth
	height := game.VisibleRows*scale + 2
	return width, height
}

func titleStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
}

func highlightStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true).Underline(true)
}

func helpStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.TextColor)
}

func warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
}

func center(width, height int, content string) string {
	if width == 0 || height == 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderSyncLoader(dots int) string {
	if dots < 0 {
		dots = 0
	}
	return "Syncing" + strings.Repeat(".", dots%4)
}

func clampScale(value int) int {
	return max(1, min(3, value))
}

func clampVolumePercent(value int) int {
	return max(0, min(100, value))
}

func cellWidth(scale int) int {
	return 2 * max(1, scale)
}

func renderMenu(title string, items []string, selected int, footer string, theme Theme) string {
	width := max(lipgloss.Width(title), lipgloss.Width(footer))
	for _, item := range items {
		width = max(width, lipgloss.Width(item))
	}
	line := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder
	b.WriteString(line.Render(titleStyle(theme).Render(title)))
	b.WriteString("\n\n")
	for i, item := range items {
		if i == selected {
			item = highlightStyle(theme).Render(item)
		}
		b.WriteString(line.Render(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(line.Render(helpStyle(theme).Render(footer)))
	return b.String()
}
