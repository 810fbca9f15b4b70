package polyis

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ghthor/polyis/polyomino"
)

const (
	DefaultBlock = "  "
	DefaultEmpty = "  "
	GhostBlock   = "░░"
)

type styles struct {
	r *lipgloss.Renderer

	tiles  map[polyomino.Color]lipgloss.Style
	ghosts map[polyomino.Color]lipgloss.Style

	border lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	title  lipgloss.Style
	faint  lipgloss.Style
	banner lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *styles {
	return &styles{
		r:      r,
		tiles:  make(map[polyomino.Color]lipgloss.Style),
		ghosts: make(map[polyomino.Color]lipgloss.Style),
		border: r.NewStyle().Foreground(lipgloss.Color("240")),
		label:  r.NewStyle().Foreground(lipgloss.Color("244")).Bold(true),
		value:  r.NewStyle().Bold(true),
		title:  r.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		faint:  r.NewStyle().Faint(true),
		banner: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 2),
	}
}

func (s *styles) tile(c polyomino.Color) lipgloss.Style {
	st, ok := s.tiles[c]
	if !ok {
		st = s.r.NewStyle().Background(lipgloss.Color(c.Hex()))
		s.tiles[c] = st
	}
	return st
}

func (s *styles) ghost(c polyomino.Color) lipgloss.Style {
	st, ok := s.ghosts[c]
	if !ok {
		st = s.r.NewStyle().Foreground(lipgloss.Color(c.Hex()))
		s.ghosts[c] = st
	}
	return st
}
