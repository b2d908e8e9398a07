package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"

	"github.com/shixinhuang99/sxtetris/game"
	"github.com/shixinhuang99/sxtetris/timing"
)

type Screen int

const (
	screenMenu Screen = iota
	screenGame
	screenThemes
	screenScores
	screenConfig
	screenNameEntry
)

// timerMsg carries one coordinator event into the update loop.
type timerMsg timing.Event

type soundMsg struct{}
type syncTickMsg struct{}

type menuAction int

const (
	menuPlay menuAction = iota
	menuContinue
	menuThemes
	menuScores
	menuConfig
	menuQuit
)

func (a menuAction) String() string {
	switch a {
	case menuPlay:
		return "New Game"
	case menuContinue:
		return "Continue"
	case menuThemes:
		return "Themes"
	case menuScores:
		return "Scores"
	case menuConfig:
		return "Config"
	case menuQuit:
		return "Quit"
	}
	return ""
}

type configItem int

const (
	configSound configItem = iota
	configMusic
	configVolume
	configGhost
	configAnimations
	configScale
	configSync
)

var configItems = []configItem{configSound, configMusic, configVolume, configGhost, configAnimations, configScale, configSync}

func (c configItem) String() string {
	switch c {
	case configSound:
		return "Sound Effects"
	case configMusic:
		return "Music"
	case configVolume:
		return "Volume"
	case configGhost:
		return "Ghost Piece"
	case configAnimations:
		return "Line Clear Animation"
	case configScale:
		return "Game Scale"
	case configSync:
		return "Score Sync"
	}
	return ""
}

type Options struct {
	// Seed drives the piece bag. Zero picks one from the clock.
	Seed int64
	// Audio opens the sound device. Tests run without it.
	Audio bool
}

type Model struct {
	screen       Screen
	width        int
	height       int
	menuIndex    int
	configIndex  int
	themeIndex   int
	scoresOffset int
	pauseIndex   int
	config       Config
	scores       []ScoreEntry
	timers       *timing.Coordinator
	session      *game.Session
	saved        *game.Snapshot
	nameInput    string
	sound        *SoundEngine
	music        *MusicPlayer
	sync         *ScoreSync
	syncWarning  string
	syncLoading  bool
	syncDots     int
}

func NewModel(opts Options) Model {
	config, err := loadConfig()
	if err != nil {
		DebugLogf("load config: %v", err)
	}
	scores, err := loadScores()
	if err != nil {
		DebugLogf("load scores: %v", err)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	timers := timing.NewCoordinator(timing.RealClock(), debugScope("timer"))
	m := Model{
		screen:     screenMenu,
		config:     config,
		scores:     scores,
		themeIndex: max(0, themeIndexByName(config.Theme)),
		timers:     timers,
		session:    game.NewSession(timers, seed),
		saved:      loadSession(),
		sync:       NewScoreSyncFromEnv(config.Sync),
	}

	var ctx *oto.Context
	sampleRate := defaultSampleRate
	if opts.Audio && (config.Sound || config.Music) {
		ctx, sampleRate, err = initAudioContext(m.musicPath())
		if err != nil {
			DebugLogf("audio disabled: %v", err)
		}
	}
	volume := volumeFromPercent(config.Volume)
	m.sound = NewSoundEngine(ctx, sampleRate, config.Sound)
	m.sound.SetVolume(volume)
	m.music = NewMusicPlayer(ctx, sampleRate, m.musicPath(), volume, config.Music)
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForTimer(m.timers.Events())
}

// waitForTimer blocks on the next coordinator event. Exactly one is pending
// at a time; Update issues the next one after handling each event.
func waitForTimer(events <-chan timing.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return timerMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerMsg:
		cmds := []tea.Cmd{waitForTimer(m.timers.Events())}
		if m.screen == screenGame {
			fb := m.session.HandleTimer(timing.Event(msg))
			cmds = append(cmds, m.afterGameInput(fb))
		}
		return m, tea.Batch(cmds...)
	case tea.BlurMsg:
		if m.screen == screenGame {
			return m, m.afterGameInput(m.session.Handle(game.InputFocusLost))
		}
		return m, nil
	case soundMsg:
		return m, nil
	case syncTickMsg:
		if m.syncLoading {
			m.syncDots = (m.syncDots + 1) % 4
			return m, syncTickCmd()
		}
		return m, nil
	case scoresLoadedMsg:
		m.syncLoading = false
		if msg.err != nil {
			DebugLogf("fetch scores: %v", msg.err)
			m.syncWarning = "Offline: showing local scores."
			return m, nil
		}
		m.syncWarning = ""
		if len(msg.scores) > 0 {
			m.scores = mergeScores(m.scores, msg.scores)
		}
		return m, nil
	case scoreUploadedMsg:
		if msg.err != nil {
			DebugLogf("upload score: %v", msg.err)
			m.syncWarning = "Offline: score saved locally."
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, menuKeys.Quit):
			return m, m.quit()
		case key.Matches(msg, menuKeys.Bigger):
			m.adjustScale(1)
			return m, nil
		case key.Matches(msg, menuKeys.Smaller):
			m.adjustScale(-1)
			return m, nil
		}
		switch m.screen {
		case screenMenu:
			return m, m.updateMenu(msg)
		case screenGame:
			return m, m.updateGame(msg)
		case screenThemes:
			return m, m.updateThemes(msg)
		case screenScores:
			return m, m.updateScores(msg)
		case screenConfig:
			return m, m.updateConfig(msg)
		case screenNameEntry:
			return m, m.updateNameEntry(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case screenMenu:
		return viewMenu(m)
	case screenGame:
		return viewGame(m)
	case screenThemes:
		return viewThemes(m)
	case screenScores:
		return viewScores(m)
	case screenConfig:
		return viewConfig(m)
	case screenNameEntry:
		return viewNameEntry(m)
	}
	return ""
}

// shutdown releases the timers and the audio. main calls it with the final
// model once the program has exited.
func (m Model) shutdown() {
	m.timers.Close()
	m.music.Stop()
}

func syncTickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg { return syncTickMsg{} })
}

func playSound(engine *SoundEngine, events ...SoundEvent) tea.Cmd {
	if len(events) == 0 {
		return nil
	}
	return func() tea.Msg {
		if engine != nil {
			for _, event := range events {
				engine.Play(event)
			}
		}
		return soundMsg{}
	}
}

func (m *Model) uiSound(event SoundEvent) tea.Cmd {
	if !m.config.Sound {
		return nil
	}
	return playSound(m.sound, event)
}

// soundsFor picks the effects for what a game step did. A line clear
// replaces the plain lock sound.
func soundsFor(fb game.Feedback, cleared int) []SoundEvent {
	if fb.Has(game.FeedbackGameOver) {
		return []SoundEvent{SoundGameOver}
	}
	var events []SoundEvent
	switch {
	case fb.Has(game.FeedbackClear):
		events = append(events, lineSound(cleared))
	case fb.Has(game.FeedbackHardDrop):
		events = append(events, SoundHardDrop)
	case fb.Has(game.FeedbackLock):
		events = append(events, SoundLock)
	}
	if fb.Has(game.FeedbackLevelUp) {
		events = append(events, SoundLevelUp)
	}
	switch {
	case fb.Has(game.FeedbackRotate):
		events = append(events, SoundRotate)
	case fb.Has(game.FeedbackMove):
		events = append(events, SoundMove)
	case fb.Has(game.FeedbackPause):
		events = append(events, SoundPause)
	case fb.Has(game.FeedbackTick):
		events = append(events, SoundCountdown)
	case fb.Has(game.FeedbackResume):
		events = append(events, SoundGo)
	}
	return events
}

func lineSound(cleared int) SoundEvent {
	switch cleared {
	case 1:
		return SoundLine1
	case 2:
		return SoundLine2
	case 3:
		return SoundLine3
	}
	return SoundLine4
}

// afterGameInput applies the side effects of a session step: sounds, music
// and the switch to name entry once the game is over.
func (m *Model) afterGameInput(fb game.Feedback) tea.Cmd {
	var cmds []tea.Cmd
	if m.config.Sound {
		cmds = append(cmds, playSound(m.sound, soundsFor(fb, m.session.LastCleared())...))
	}
	if fb.Has(game.FeedbackPause) {
		m.pauseIndex = pauseResume
	}
	if m.session.Phase() == game.Over {
		m.finishGame()
	}
	m.syncMusic()
	return tea.Batch(cmds...)
}

func (m *Model) syncMusic() {
	if !m.config.Music || m.screen != screenGame {
		m.music.Stop()
		return
	}
	switch m.session.Phase() {
	case game.Playing, game.Clearing:
		if m.music.Playing() {
			m.music.Resume()
		} else {
			m.music.Start()
		}
	case game.Paused, game.Countdown:
		m.music.Pause()
	default:
		m.music.Stop()
	}
}

func (m *Model) musicPath() string {
	if m.config.MusicFile != "" {
		return m.config.MusicFile
	}
	return envString(envMusicFile)
}

func (m *Model) menuActions() []menuAction {
	actions := []menuAction{menuPlay}
	if m.saved != nil {
		actions = append(actions, menuContinue)
	}
	return append(actions, menuThemes, menuScores, menuConfig, menuQuit)
}

func (m *Model) setScreen(screen Screen) {
	m.screen = screen
	m.syncMusic()
}

func (m *Model) startGame() tea.Cmd {
	m.discardSave()
	m.pauseIndex = pauseResume
	m.screen = screenGame
	fb := m.session.NewGame()
	return m.afterGameInput(fb)
}

// continueGame resumes the saved session behind a countdown. A save that no
// longer loads is dropped.
func (m *Model) continueGame() tea.Cmd {
	if m.saved == nil {
		return nil
	}
	if err := m.session.Restore(*m.saved); err != nil {
		DebugLogf("continue: %v", err)
		m.discardSave()
		m.menuIndex = 0
		return nil
	}
	m.pauseIndex = pauseResume
	m.screen = screenGame
	return m.afterGameInput(game.FeedbackTick)
}

// leaveGame saves the running game, when it can be saved, and stops it.
func (m *Model) leaveGame() {
	if m.session.InProgress() {
		if snap, ok := m.session.Snapshot(); ok {
			if err := saveSession(snap); err != nil {
				DebugLogf("save session: %v", err)
			} else {
				m.saved = &snap
			}
		}
	}
	m.session.End()
	m.menuIndex = 0
	m.setScreen(screenMenu)
}

func (m *Model) finishGame() {
	m.discardSave()
	m.nameInput = ""
	m.screen = screenNameEntry
}

func (m *Model) discardSave() {
	if m.saved != nil {
		clearSession()
	}
	m.saved = nil
}

func (m *Model) quit() tea.Cmd {
	if m.screen == screenGame {
		m.leaveGame()
	}
	return tea.Quit
}

func (m *Model) adjustScale(delta int) {
	scale := clampScale(m.config.Scale + delta)
	if scale != m.config.Scale {
		m.config.Scale = scale
		m.persistConfig()
	}
}

func (m *Model) adjustVolume(delta int) {
	volume := clampVolumePercent(m.config.Volume + delta)
	if volume == m.config.Volume {
		return
	}
	m.config.Volume = volume
	m.sound.SetVolume(volumeFromPercent(volume))
	m.music.SetVolume(volumeFromPercent(volume))
	m.persistConfig()
}

func (m *Model) persistConfig() {
	if err := saveConfig(m.config); err != nil {
		DebugLogf("save config: %v", err)
	}
}

func volumeFromPercent(value int) float64 {
	return float64(clampVolumePercent(value)) / 100
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	actions := m.menuActions()
	m.menuIndex = min(m.menuIndex, len(actions)-1)
	switch {
	case key.Matches(msg, menuKeys.Up):
		if m.menuIndex > 0 {
			m.menuIndex--
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Down):
		if m.menuIndex < len(actions)-1 {
			m.menuIndex++
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Select):
		click := m.uiSound(SoundMenuSelect)
		switch actions[m.menuIndex] {
		case menuPlay:
			return tea.Batch(click, m.startGame())
		case menuContinue:
			return tea.Batch(click, m.continueGame())
		case menuThemes:
			m.setScreen(screenThemes)
		case menuScores:
			return tea.Batch(click, m.openScores())
		case menuConfig:
			m.setScreen(screenConfig)
		case menuQuit:
			return m.quit()
		}
		return click
	case key.Matches(msg, menuKeys.Back):
		return m.quit()
	}
	return nil
}

func (m *Model) openScores() tea.Cmd {
	m.scoresOffset = 0
	m.syncWarning = ""
	m.setScreen(screenScores)
	if !m.sync.Enabled() {
		return nil
	}
	m.syncLoading = true
	m.syncDots = 0
	return tea.Batch(m.sync.FetchScoresCmd(), syncTickCmd())
}

func (m *Model) updateGame(msg tea.KeyMsg) tea.Cmd {
	if m.session.Phase() == game.Paused {
		return m.updatePauseMenu(msg)
	}
	in, ok := inputForKey(msg)
	if !ok {
		return nil
	}
	return m.afterGameInput(m.session.Handle(in))
}

func (m *Model) updatePauseMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Up):
		if m.pauseIndex > 0 {
			m.pauseIndex--
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Down):
		if m.pauseIndex < len(pauseItems)-1 {
			m.pauseIndex++
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, gameKeys.Pause), key.Matches(msg, menuKeys.Back):
		return m.afterGameInput(m.session.Handle(game.InputPause))
	case key.Matches(msg, menuKeys.Select):
		switch m.pauseIndex {
		case pauseResume:
			return m.afterGameInput(m.session.Handle(game.InputPause))
		case pauseNewGame:
			return tea.Batch(m.uiSound(SoundMenuSelect), m.startGame())
		case pauseMainMenu:
			m.leaveGame()
			return m.uiSound(SoundMenuSelect)
		}
	}
	return nil
}

func (m *Model) updateThemes(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Up):
		if m.themeIndex > 0 {
			m.themeIndex--
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Down):
		if m.themeIndex < len(themes)-1 {
			m.themeIndex++
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Select):
		m.config.Theme = themes[m.themeIndex].Name
		m.persistConfig()
		m.setScreen(screenMenu)
		return m.uiSound(SoundMenuSelect)
	case key.Matches(msg, menuKeys.Back):
		m.themeIndex = max(0, themeIndexByName(m.config.Theme))
		m.setScreen(screenMenu)
	}
	return nil
}

func (m *Model) updateScores(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Select), key.Matches(msg, menuKeys.Back):
		m.syncLoading = false
		m.setScreen(screenMenu)
		return m.uiSound(SoundMenuSelect)
	case key.Matches(msg, menuKeys.Up):
		if m.scoresOffset > 0 {
			m.scoresOffset--
		}
	case key.Matches(msg, menuKeys.Down):
		if m.scoresOffset < max(0, len(m.scores)-scoresPageSize) {
			m.scoresOffset++
		}
	}
	return nil
}

func (m *Model) updateConfig(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Up):
		if m.configIndex > 0 {
			m.configIndex--
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Down):
		if m.configIndex < len(configItems)-1 {
			m.configIndex++
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Select):
		m.toggleConfig(configItems[m.configIndex])
		return m.uiSound(SoundMenuSelect)
	case key.Matches(msg, menuKeys.Left):
		if m.stepConfig(configItems[m.configIndex], -1) {
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Right):
		if m.stepConfig(configItems[m.configIndex], 1) {
			return m.uiSound(SoundMenuMove)
		}
	case key.Matches(msg, menuKeys.Back):
		m.setScreen(screenMenu)
	}
	return nil
}

func (m *Model) toggleConfig(item configItem) {
	switch item {
	case configSound:
		m.config.Sound = !m.config.Sound
		m.sound.SetEnabled(m.config.Sound)
	case configMusic:
		m.config.Music = !m.config.Music
		m.music.SetEnabled(m.config.Music)
	case configVolume:
		m.adjustVolume(5)
		return
	case configGhost:
		m.config.Ghost = !m.config.Ghost
	case configAnimations:
		m.config.Animations = !m.config.Animations
	case configScale:
		m.adjustScale(1)
		return
	case configSync:
		m.config.Sync = !m.config.Sync
		m.sync.SetEnabled(m.config.Sync)
	}
	m.persistConfig()
}

func (m *Model) stepConfig(item configItem, dir int) bool {
	switch item {
	case configVolume:
		m.adjustVolume(5 * dir)
		return true
	case configScale:
		m.adjustScale(dir)
		return true
	}
	return false
}

func (m *Model) updateNameEntry(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput)
		if name == "" {
			name = "AAA"
		}
		stats := m.session.Stats()
		entry := ScoreEntry{
			Name:  name,
			Score: stats.Score,
			Lines: stats.Lines,
			Level: stats.Level,
			When:  time.Now().Format("2006-01-02 15:04"),
		}
		m.scores = insertScore(m.scores, entry)
		if err := saveScores(m.scores); err != nil {
			DebugLogf("save scores: %v", err)
		}
		m.session.End()
		m.scoresOffset = 0
		m.syncWarning = ""
		m.setScreen(screenScores)
		if !m.sync.Enabled() {
			return nil
		}
		m.syncLoading = true
		m.syncDots = 0
		return tea.Batch(tea.Sequence(m.sync.UploadScoreCmd(entry), m.sync.FetchScoresCmd()), syncTickCmd())
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.nameInput) > 0 {
			runes := []rune(m.nameInput)
			m.nameInput = string(runes[:len(runes)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		if len([]rune(m.nameInput)) < maxNameLength {
			m.nameInput += string(msg.Runes)
		}
	case tea.KeyEsc:
		m.session.End()
		m.setScreen(screenMenu)
	}
	return nil
}
