// Package tui renders the round engine as an interactive terminal game.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/cardwar/internal/deck"
	"github.com/lox/cardwar/internal/game"
)

// Engine is the part of *game.Engine the TUI drives
type Engine interface {
	StartNewGame(winThreshold int) string
	PlayRound() (int, error)
	Snapshot() game.Snapshot
	Events() game.EventBus
}

// EventMsg carries an engine event into the Bubble Tea loop
type EventMsg struct {
	Event game.GameEvent
}

// AdShownMsg reports that an interstitial was actually displayed
type AdShownMsg struct {
	Round int
}

type gameStartedMsg struct {
	gameID string
}

type roundResultMsg struct {
	round int
	err   error
}

// chrome is the number of lines used by everything except the log viewport
const chrome = 16

// Model represents the Bubble Tea model for a game of war
type Model struct {
	engine       Engine
	winThreshold int
	logger       *log.Logger
	formatter    game.EventFormatter

	// UI components
	logViewport viewport.Model
	help        help.Model
	keys        keyMap

	// State
	gameLog  []string
	snapshot game.Snapshot
	notice   string
	adRound  int
	quitting bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a model for engine. Games started from the TUI play to
// winThreshold wins; zero uses the engine default.
func NewModel(engine Engine, winThreshold int, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	return &Model{
		engine:       engine,
		winThreshold: winThreshold,
		logger:       logger.WithPrefix("tui"),
		formatter:    game.EventFormatter{ShowPhases: true},
		logViewport:  vp,
		help:         help.New(),
		keys:         defaultKeyMap(),
		snapshot:     engine.Snapshot(),
	}
}

// Init starts the first game
func (m *Model) Init() tea.Cmd {
	return m.startGame()
}

// Engine calls run as commands so that events published synchronously can
// re-enter the program loop.
func (m *Model) startGame() tea.Cmd {
	engine, threshold := m.engine, m.winThreshold
	return func() tea.Msg {
		return gameStartedMsg{gameID: engine.StartNewGame(threshold)}
	}
}

func (m *Model) playRound() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		round, err := engine.PlayRound()
		return roundResultMsg{round: round, err: err}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logViewport.Width = max(msg.Width-2, 1)
		m.logViewport.Height = max(msg.Height-chrome, 3)
		m.logViewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Draw):
			return m, m.playRound()
		case key.Matches(msg, m.keys.NewGame):
			return m, m.startGame()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case AdShownMsg:
		m.adRound = msg.Round
		m.addLogEntry(WarningStyle.Render(fmt.Sprintf("Advertisement after round %d", msg.Round)))
		return m, nil

	case gameStartedMsg:
		m.logger.Debug("Game started", "game", msg.gameID)
		m.notice = ""
		m.snapshot = m.engine.Snapshot()
		return m, nil

	case roundResultMsg:
		switch {
		case errors.Is(msg.err, game.ErrRoundInProgress):
			m.notice = "Wait for the cards to be revealed"
		case errors.Is(msg.err, game.ErrNoActiveGame):
			m.notice = "Press n to start a new game"
		case msg.err != nil:
			m.notice = msg.err.Error()
		default:
			m.notice = ""
		}
		m.snapshot = m.engine.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) handleEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.GameStartEvent:
		m.adRound = 0
		m.addLogEntry(StatusStyle.Render(m.formatter.Format(e)))
	case game.RoundStartEvent:
		m.adRound = 0
		m.addLogEntry(InfoStyle.Render(m.formatter.Format(e)))
	case game.RoundOutcomeEvent:
		style := SuccessStyle
		if e.Winner == game.SideOpponent {
			style = ErrorStyle
		} else if e.Tie() {
			style = WarningStyle
		}
		m.addLogEntry(style.Render(m.formatter.Format(e)))
	case game.GameOverEvent:
		style := SuccessStyle
		if e.Winner != game.SidePlayer {
			style = ErrorStyle
		}
		m.addLogEntry(style.Render(m.formatter.Format(e)))
	case game.PhaseChangeEvent:
		if e.Phase == game.PhaseRevealingPlayer || e.Phase == game.PhaseRevealingOpponent {
			m.addLogEntry(m.formatter.Format(e))
		}
	case game.RoundReadyEvent:
		m.adRound = 0
	}

	m.snapshot = m.engine.Snapshot()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	s := m.snapshot
	var b strings.Builder

	threshold := s.WinThreshold
	if threshold == 0 {
		threshold = m.winThreshold
	}
	b.WriteString(HeaderStyle.Render("CARD WAR"))
	if threshold > 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  first to %d", threshold)))
	}
	b.WriteString("\n\n")

	b.WriteString(ScoreStyle.Render(fmt.Sprintf("You %d : %d Opponent", s.PlayerScore, s.OpponentScore)))
	if s.Round > 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("   round %d", s.Round)))
	}
	b.WriteString("\n")

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	b.WriteString(StatusStyle.Render(s.Status))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(ErrorStyle.Render(m.notice))
	}
	b.WriteString("\n")
	if m.adRound > 0 {
		b.WriteString(AdBannerStyle.Render("Advertisement"))
	}
	b.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262"))
	b.WriteString(logStyle.Render(m.logViewport.View()))
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderTable draws both cards side by side
func (m *Model) renderTable() string {
	s := m.snapshot
	winner := game.SideNone
	if s.PlayerCard != nil && s.OpponentCard != nil {
		winner = game.Decide(*s.PlayerCard, *s.OpponentCard)
	}

	dealt := s.Phase.InRound()
	player := renderCardBox("You", s.PlayerCard, dealt, winner == game.SidePlayer)
	opponent := renderCardBox("Opponent", s.OpponentCard, dealt, winner == game.SideOpponent)
	vs := lipgloss.NewStyle().Padding(2, 2).Render("vs")
	return lipgloss.JoinHorizontal(lipgloss.Top, player, vs, opponent)
}

func renderCardBox(label string, card *deck.Card, dealt, winning bool) string {
	var face string
	switch {
	case card != nil && card.IsRed():
		face = RedCardStyle.Render(card.String())
	case card != nil:
		face = BlackCardStyle.Render(card.String())
	case dealt:
		face = FaceDownStyle.Render("??")
	default:
		face = InfoStyle.Render("--")
	}

	style := CardBoxStyle
	if winning {
		style = WinningCardBoxStyle
	}
	return style.Render(label + "\n\n" + face)
}

func (m *Model) addLogEntry(entry string) {
	if entry == "" {
		return
	}
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the game log lines shown so far
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// AdNotifier reports interstitials that were actually shown
type AdNotifier interface {
	OnShow(fn func(round int))
}

// Options configures Run
type Options struct {
	WinThreshold int
	Ads          AdNotifier
	Logger       *log.Logger
	ProgramOpts  []tea.ProgramOption
}

// Run plays interactively until the user quits
func Run(engine Engine, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	model := NewModel(engine, opts.WinThreshold, logger)
	programOpts := append([]tea.ProgramOption{tea.WithAltScreen()}, opts.ProgramOpts...)
	p := tea.NewProgram(model, programOpts...)

	unsubscribe := engine.Events().Subscribe(game.SubscriberFunc(func(ev game.GameEvent) {
		p.Send(EventMsg{Event: ev})
	}))
	defer unsubscribe()

	if opts.Ads != nil {
		opts.Ads.OnShow(func(round int) {
			p.Send(AdShownMsg{Round: round})
		})
	}

	_, err := p.Run()
	return err
}
