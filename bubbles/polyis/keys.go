package polyis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	SoftDrop  key.Binding
	HardDrop  key.Binding
	Hold      key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var _ help.KeyMap = KeyMap{}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		RotateCW:  key.NewBinding(key.WithKeys("up", "x", "k"), key.WithHelp("↑/x", "rotate ↷")),
		RotateCCW: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "rotate ↶")),
		SoftDrop:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "soft drop")),
		HardDrop:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "hard drop")),
		Hold:      key.NewBinding(key.WithKeys("c", "shift+left"), key.WithHelp("c", "hold")),
		Pause:     key.NewBinding(key.WithKeys("p", "esc"), key.WithHelp("p", "pause")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.RotateCW, k.HardDrop, k.Hold, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.SoftDrop, k.HardDrop},
		{k.RotateCW, k.RotateCCW, k.Hold},
		{k.Pause, k.Restart, k.Help, k.Quit},
	}
}

func (k *KeyMap) byAction() map[string]*key.Binding {
	return map[string]*key.Binding{
		"left":       &k.Left,
		"right":      &k.Right,
		"rotate-cw":  &k.RotateCW,
		"rotate-ccw": &k.RotateCCW,
		"soft-drop":  &k.SoftDrop,
		"hard-drop":  &k.HardDrop,
		"hold":       &k.Hold,
		"pause":      &k.Pause,
		"restart":    &k.Restart,
		"help":       &k.Help,
		"quit":       &k.Quit,
	}
}

// Actions lists the names accepted by Rebind.
func Actions() []string {
	var k KeyMap
	names := make([]string, 0, 11)
	for name := range k.byAction() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Rebind replaces the keys of the named actions. The help text is updated to
// show the first key.
func (k *KeyMap) Rebind(bindings map[string][]string) error {
	actions := k.byAction()
	for name, keys := range bindings {
		b, ok := actions[name]
		if !ok {
			return fmt.Errorf("unknown action %q, expected one of %s", name, strings.Join(Actions(), ", "))
		}
		if len(keys) == 0 {
			return fmt.Errorf("no keys bound to %q", name)
		}
		b.SetKeys(keys...)
		b.SetHelp(keyLabel(keys[0]), b.Help().Desc)
	}
	return nil
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
