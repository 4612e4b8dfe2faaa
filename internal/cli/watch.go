package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

var (
	watchUntilIdle bool
	watchReconnect bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the agent's live log",
	Long: `Follow the agent's status and live log on the push channel in plain output.

Runs until interrupted, or with --until-idle until the agent stops.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchUntilIdle, "until-idle", false, "exit once a running agent stops")
	watchCmd.Flags().BoolVar(&watchReconnect, "reconnect", false, "reconnect with backoff when the push channel drops")
}

// programSender forwards push events into a running program. The program is
// set before Run, and pushes only start once Run has called Init.
type programSender struct {
	p *tea.Program
}

func (s *programSender) Send(msg tea.Msg) { s.p.Send(msg) }

func runWatch(cmd *cobra.Command, args []string) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	push := b.settings.Push
	if watchReconnect {
		push.Reconnect = true
	}

	sender := &programSender{}
	sess := session.New(b.client, session.Options{
		LogCapacity: b.settings.Logs.Capacity,
		Push:        session.PusherFor(b.client, push),
		Sender:      sender,
		Logger:      b.log,
	})
	defer sess.Close()

	model := newWatchModel(sess, cmd.OutOrStdout(), watchUntilIdle)
	p := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(nil),
		tea.WithoutRenderer(),
	)
	sender.p = p

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrInterrupted) && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if wm, ok := final.(*watchModel); ok && wm.err != nil {
		return describeError(b, wm.err)
	}
	return nil
}

// watchModel prints session changes as plain lines. It runs without a
// renderer, so Update writes to out directly.
type watchModel struct {
	sess      *session.Session
	out       io.Writer
	untilIdle bool

	printed    uint64
	status     models.AgentStatus
	sawRunning bool
	err        error
}

func newWatchModel(sess *session.Session, out io.Writer, untilIdle bool) *watchModel {
	return &watchModel{sess: sess, out: out, untilIdle: untilIdle}
}

func (m *watchModel) Init() tea.Cmd {
	return m.sess.Start()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case session.ErrorMsg:
		fmt.Fprintln(m.out, styleError.Render(fmt.Sprintf("%s: %v", msg.Op, msg.Err)))
		if msg.Op == "status" && client.IsUnreachable(msg.Err) {
			m.err = msg.Err
			return m, tea.Quit
		}
		return m, nil

	case session.NoticeMsg:
		fmt.Fprintln(m.out, styleHint.Render(msg.Text))
		return m, nil

	case session.ConnStateMsg:
		m.sess.Update(msg)
		switch msg.State {
		case client.Open:
			fmt.Fprintln(m.out, styleHint.Render("connected to push channel"))
		case client.Closed:
			if msg.Err != nil {
				fmt.Fprintln(m.out, styleWarning.Render("push channel lost: "+msg.Err.Error()))
			}
		}
		return m, nil

	case session.PushStoppedMsg:
		m.sess.Update(msg)
		if msg.Err != nil {
			m.err = msg.Err
		}
		fmt.Fprintln(m.out, styleHint.Render("push channel closed"))
		return m, tea.Quit
	}

	cmd := m.sess.Update(msg)
	m.flushLogs()
	if m.observeStatus() {
		return m, tea.Quit
	}
	return m, cmd
}

// flushLogs prints entries appended since the last flush. Entries evicted
// before they could be printed are reported as a count.
func (m *watchModel) flushLogs() {
	total := m.sess.Logs.Total()
	fresh := total - m.printed
	if fresh == 0 {
		return
	}
	if held := uint64(m.sess.Logs.Len()); fresh > held {
		fmt.Fprintln(m.out, styleHint.Render(fmt.Sprintf("... %d lines skipped", fresh-held)))
		fresh = held
	}
	for _, e := range m.sess.Logs.Tail(int(fresh)) {
		line := session.FormatLine(e, time.Local)
		fmt.Fprintln(m.out, toneStyle(session.Classify(e)).Render(line))
	}
	m.printed = total
}

// observeStatus prints status changes and reports whether to exit.
func (m *watchModel) observeStatus() bool {
	if m.sess.Status.Source() == session.SourceNone {
		return false
	}
	status := m.sess.Status.Current()
	if status == m.status {
		return false
	}
	m.status = status
	fmt.Fprintf(m.out, "%s %s\n", styleLabel.Render("agent:"), statusBadge(status))

	if status.IsRunning() {
		m.sawRunning = true
		return false
	}
	return m.untilIdle && m.sawRunning
}

func (m *watchModel) View() string { return "" }
