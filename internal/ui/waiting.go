package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/oneshot/internal/models"
)

// Waiting shows a spinner until a listener run resolves.
type Waiting struct {
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	prompt      string
	authURL     string
	callbackURL string
	run         func() models.Outcome
	cancel      context.CancelFunc
	cancelled   bool
	outcome     *models.Outcome
}

// NewWaiting creates the waiting view. run blocks until the listener resolves; cancel must make it return.
//
// authURL is shown as the link to open, and may be empty when the user is expected to trigger the
// callback some other way.
func NewWaiting(prompt, authURL string, run func() models.Outcome, cancel context.CancelFunc) Waiting {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return Waiting{
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
		prompt:  prompt,
		authURL: authURL,
		run:     run,
		cancel:  cancel,
	}
}

func (m Waiting) Init() tea.Cmd {
	run := m.run
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return runFinishedMsg(run())
	})
}

func (m Waiting) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Msg:
		switch msg.kind {
		case MsgReady:
			m.callbackURL, _ = msg.data.(string)
			return m, nil
		case MsgRunFinished:
			outcome, _ := msg.data.(models.Outcome)
			m.outcome = &outcome
			return m, tea.Quit
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.cancel) && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case spinner.TickMsg:
		if m.outcome != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Waiting) View() string {
	if m.outcome != nil {
		return RenderHeadings(HeadingsFor(*m.outcome))
	}

	var b strings.Builder
	if m.cancelled {
		fmt.Fprintf(&b, "%s Cancelling...\n", m.spinner.View())
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.prompt)
	if m.authURL != "" {
		fmt.Fprintf(&b, "\n  %s\n", m.authURL)
	}
	if m.callbackURL != "" {
		b.WriteString(styles.help.Render(fmt.Sprintf("  listening on %s", m.callbackURL)))
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// Outcome returns the resolved outcome, or false if the program exited before the run finished.
func (m Waiting) Outcome() (models.Outcome, bool) {
	if m.outcome == nil {
		return models.Outcome{}, false
	}
	return *m.outcome, true
}
