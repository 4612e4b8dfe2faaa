// Package tui implements the interactive mission control dashboard.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the dashboard against the configured backend and blocks
// until the user quits.
func Run(settings *models.Settings, log *logrus.Entry) error {
	c := client.FromSettings(settings, log)
	log = log.WithField("session_id", c.SessionID())

	ref := &programRef{}
	sess := session.New(c, session.Options{
		LogCapacity: settings.Logs.Capacity,
		Push:        session.PusherFor(c, settings.Push),
		Sender:      ref,
		Logger:      log,
	})
	defer sess.Close()

	model := NewModel(sess, ref)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// Store program reference for goroutine sends
	ref.Set(p)

	log.WithField("api", c.BaseURL()).Info("dashboard started")
	_, err := p.Run()
	ref.Clear()
	log.Info("dashboard exited")
	return err
}
