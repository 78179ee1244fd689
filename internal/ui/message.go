package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/oneshot/internal/models"
)

// MsgKind enumerates all message types in the waiting view.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgReady MsgKind = iota
	MsgRunFinished
)

// ReadyMsg is the constructor for [MsgReady], sent once the listener is bound.
func ReadyMsg(callbackURL string) Msg {
	return Msg{kind: MsgReady, data: callbackURL}
}

// runFinishedMsg is the constructor for [MsgRunFinished]
func runFinishedMsg(outcome models.Outcome) Msg {
	return Msg{kind: MsgRunFinished, data: outcome}
}
