package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit key.Binding
	Help key.Binding
	Tab  key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("Ctrl+q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "help"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch panel"),
	),
}

// MissionKeys are active on the mission tab while not typing.
type MissionKeys struct {
	Write   key.Binding
	Execute key.Binding
	Stop    key.Binding
	New     key.Binding
	Up      key.Binding
	Down    key.Binding
}

var missionKeys = MissionKeys{
	Write: key.NewBinding(
		key.WithKeys("i", "enter"),
		key.WithHelp("i", "write mission"),
	),
	Execute: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "execute"),
	),
	Stop: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "stop agent"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new mission"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
}

// EditorKeys are active while the mission textarea has focus.
type EditorKeys struct {
	Submit key.Binding
	Cancel key.Binding
}

var editorKeys = EditorKeys{
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("Ctrl+s", "optimize"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "leave editor"),
	),
}

// HistoryKeys are active on the history tab.
type HistoryKeys struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
}

var historyKeys = HistoryKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// LogKeys are active when the log panel is focused.
type LogKeys struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Follow key.Binding
}

var logKeys = LogKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	PgUp: key.NewBinding(
		key.WithKeys("pgup"),
	),
	PgDown: key.NewBinding(
		key.WithKeys("pgdown"),
	),
	Follow: key.NewBinding(
		key.WithKeys("f", "G"),
		key.WithHelp("f", "follow"),
	),
}

// TabSwitchKeys switch left panel tabs.
type TabSwitchKeys struct {
	Tab1 key.Binding
	Tab2 key.Binding
}

var tabSwitchKeys = TabSwitchKeys{
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "Mission"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "History"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}
