// Package polyis is the bubbletea front end of a game.Session. It runs the
// session on a fixed frame tick, maps keys onto commands and renders the
// board, hold slot and upcoming pieces with lipgloss.
package polyis

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/ghthor/polyis/game"
	"github.com/ghthor/polyis/polyomino"
)

const (
	// Frame is the interval between session updates.
	Frame = time.Second / 60

	// maxFrame bounds a single update after the program was stalled.
	maxFrame = 250 * time.Millisecond

	// SoftDropRelease is how long after the last soft drop key press the
	// drop is released. Terminals report key repeats but never key releases.
	SoftDropRelease = 250 * time.Millisecond
)

type TickMsg time.Time

// ScoreSavedMsg reports the outcome of recording a finished game.
type ScoreSavedMsg struct {
	Rank int
	Err  error
}

// GameOverFunc is called once per finished game. The returned command should
// produce a ScoreSavedMsg.
type GameOverFunc func(game.GameOver) tea.Cmd

type Option func(*Model)

func WithKeyMap(k KeyMap) Option { return func(m *Model) { m.keys = k } }

func WithGhost(enabled bool) Option { return func(m *Model) { m.ghost = enabled } }

func WithGameOver(f GameOverFunc) Option { return func(m *Model) { m.onGameOver = f } }

func WithLogger(l *log.Logger) Option { return func(m *Model) { m.log = l } }

// WithRenderer sets the lipgloss renderer, which is per connection when
// serving over ssh.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) { m.styles = newStyles(r) }
}

type tableView struct {
	side  string
	board string
	next  string
}

var _ table.Data = tableView{}

func (t tableView) At(row, col int) string {
	switch col {
	case 0:
		return t.side
	case 1:
		return t.board
	case 2:
		return t.next
	default:
		return ""
	}
}

func (t tableView) Rows() int    { return 1 }
func (t tableView) Columns() int { return 3 }

// view is a rendered string composed by the overlay.
type view string

func (v view) Init() tea.Cmd                       { return nil }
func (v view) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v view) View() string                        { return string(v) }

type Model struct {
	session *game.Session

	keys   KeyMap
	help   help.Model
	styles *styles
	log    *log.Logger
	ghost  bool

	onGameOver GameOverFunc
	saved      *ScoreSavedMsg

	last       time.Time
	softDropAt time.Time

	b       strings.Builder
	table   *table.Table
	overlay *overlay.Model
	tableView
}

var _ tea.Model = &Model{}

func New(s *game.Session, opts ...Option) *Model {
	m := &Model{
		session: s,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		log:     log.Default(),
		ghost:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.styles == nil {
		m.styles = newStyles(lipgloss.DefaultRenderer())
	}
	m.table = table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(m.styles.border)
	m.overlay = overlay.New(nil, nil, overlay.Center, overlay.Center, 0, 0)
	return m
}

func (m *Model) Session() *game.Session { return m.session }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(Frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m, m.HandleKey(msg)

	case TickMsg:
		return m, tea.Batch(m.HandleTick(time.Time(msg)), m.tick())

	case ScoreSavedMsg:
		m.saved = &msg
		if msg.Err != nil {
			m.log.Error("saving score", "err", msg.Err)
		}
	}
	return m, nil
}

// HandleKey maps a key press onto a session command.
func (m *Model) HandleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.session

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Restart):
		m.log.Debug("restart", "score", s.Score())
		s.Reset()
		m.saved = nil

	case key.Matches(msg, m.keys.Left):
		s.Handle(game.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		s.Handle(game.MoveRight)
	case key.Matches(msg, m.keys.RotateCW):
		s.Handle(game.RotateCW)
	case key.Matches(msg, m.keys.RotateCCW):
		s.Handle(game.RotateCCW)
	case key.Matches(msg, m.keys.HardDrop):
		s.Handle(game.HardDrop)
	case key.Matches(msg, m.keys.Hold):
		s.Handle(game.Hold)
	case key.Matches(msg, m.keys.Pause):
		s.Handle(game.Pause)

	case key.Matches(msg, m.keys.SoftDrop):
		m.softDropAt = time.Now()
		s.Handle(game.SoftDropStart)
	}
	return nil
}

// HandleTick advances the session to t and dispatches the events raised
// since the previous tick.
func (m *Model) HandleTick(t time.Time) tea.Cmd {
	s := m.session
	if !m.last.IsZero() {
		if s.SoftDropping() && t.Sub(m.softDropAt) > SoftDropRelease {
			s.Handle(game.SoftDropStop)
		}
		s.Update(min(t.Sub(m.last), maxFrame))
	}
	m.last = t

	var cmds []tea.Cmd
	for _, e := range s.Events() {
		m.log.Debug("event", "event", e.String())
		if over, ok := e.(game.GameOver); ok && m.onGameOver != nil {
			cmds = append(cmds, m.onGameOver(over))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) View() string {
	m.b.Reset()
	m.viewSide(&m.b)
	m.tableView.side = m.b.String()

	m.b.Reset()
	m.viewBoard(&m.b)
	m.tableView.board = m.b.String()

	m.b.Reset()
	m.viewNext(&m.b)
	m.tableView.next = m.b.String()

	m.table.Data(m.tableView)
	out := m.table.Render()
	if b := m.banner(); b != "" {
		m.overlay.Foreground = view(b)
		m.overlay.Background = view(out)
		out = m.overlay.View()
	}

	m.b.Reset()
	m.b.WriteString(out)
	m.b.WriteString("\n")
	m.b.WriteString(m.status())
	m.b.WriteString("\n")
	m.b.WriteString(m.help.View(m.keys))
	return m.b.String()
}

// banner is drawn over the middle of the table while the game is not running.
func (m *Model) banner() string {
	s := m.session
	st := m.styles
	switch s.State() {
	case game.Paused:
		return st.banner.Render(st.title.Render("PAUSED"))
	case game.Over:
		return st.banner.Render(lipgloss.JoinVertical(lipgloss.Center,
			st.title.Render("GAME OVER"),
			st.value.Render(fmt.Sprint(s.Score())),
		))
	}
	return ""
}

func (m *Model) status() string {
	s := m.session
	st := m.styles
	switch s.State() {
	case game.Paused:
		return st.title.Render("PAUSED")
	case game.Over:
		line := st.title.Render("GAME OVER") + " " + st.faint.Render("press r to play again")
		if m.saved != nil && m.saved.Err == nil && m.saved.Rank > 0 {
			line += " " + st.label.Render(fmt.Sprintf("ranked #%d", m.saved.Rank))
		}
		return line
	}
	return st.faint.Render(fmt.Sprintf("%d-tile", s.Catalog().TileCount()))
}

func pieceTile(p *game.Piece, x, y int) (polyomino.Tile, bool) {
	xx, yy := x-p.X, y-p.Y
	if yy < 0 || yy >= len(p.Tiles) || xx < 0 || xx >= len(p.Tiles[yy]) {
		return polyomino.Tile{}, false
	}
	t := p.Tiles[yy][xx]
	return t, t.Exists
}

func (m *Model) viewBoard(w io.Writer) {
	s := m.session
	b := s.Board()
	st := m.styles

	if s.State() == game.Paused {
		// the board is hidden while paused
		blank := strings.Repeat(DefaultEmpty, b.Width)
		for y := game.HiddenRows; y < b.Height; y++ {
			fmt.Fprint(w, blank)
			if y+1 != b.Height {
				fmt.Fprintln(w)
			}
		}
		return
	}

	p := s.Piece()
	ghost := p
	ghost.Y = s.GhostY()
	showPiece := s.State() == game.Playing

	for y := game.HiddenRows; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if t, ok := pieceTile(&p, x, y); ok && showPiece {
				fmt.Fprint(w, st.tile(t.Color).Render(DefaultBlock))
				continue
			}

			cell := b.Cells[y][x]
			if cell.Exists {
				fmt.Fprint(w, st.tile(cell.Color).Render(DefaultBlock))
				continue
			}

			if t, ok := pieceTile(&ghost, x, y); ok && showPiece && m.ghost {
				fmt.Fprint(w, st.ghost(t.Color).Render(GhostBlock))
				continue
			}
			fmt.Fprint(w, DefaultEmpty)
		}
		if y+1 != b.Height {
			fmt.Fprintln(w)
		}
	}
}

// printShape draws only the rows of g that hold a tile.
func (m *Model) printShape(w io.Writer, g polyomino.Grid, faint bool) {
	for _, row := range g {
		empty := true
		for _, t := range row {
			if t.Exists {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		for _, t := range row {
			switch {
			case !t.Exists:
				fmt.Fprint(w, DefaultEmpty)
			case faint:
				fmt.Fprint(w, m.styles.ghost(t.Color).Render(GhostBlock))
			default:
				fmt.Fprint(w, m.styles.tile(t.Color).Render(DefaultBlock))
			}
		}
		fmt.Fprintln(w)
	}
}

func (m *Model) viewSide(w io.Writer) {
	s := m.session
	st := m.styles

	fmt.Fprintln(w, st.label.Render("HOLD"))
	if id := s.Held(); id != polyomino.NoID {
		m.printShape(w, s.Catalog().Shape(id).Tiles(), !s.CanHold())
	} else {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	stat := func(name string, v any) {
		fmt.Fprintln(w, st.label.Render(name))
		fmt.Fprintln(w, st.value.Render(fmt.Sprint(v)))
	}
	stat("SCORE", s.Score())
	stat("LINES", s.Lines())
	stat("LEVEL", s.Level())
	if c := s.Combo(); c > 1 {
		stat("COMBO", c)
	}

	if s.Locking() {
		const width = 8
		filled := int(s.LockProgress() * width)
		fmt.Fprint(w, st.faint.Render(strings.Repeat("▰", filled)+strings.Repeat("▱", width-filled)))
	}
}

func (m *Model) viewNext(w io.Writer) {
	s := m.session
	fmt.Fprintln(w, m.styles.label.Render("NEXT"))
	for _, id := range s.Upcoming() {
		m.printShape(w, s.Catalog().Shape(id).Tiles(), false)
		fmt.Fprintln(w)
	}
}
