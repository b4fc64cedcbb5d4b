// Package tui is the terminal composer. It renders the composer mode and
// turns key presses into composer intents; it never touches audio itself.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/i18n"
	"github.com/yok-tottii/voicenote/internal/notification"
	"github.com/yok-tottii/voicenote/internal/preview"
)

var (
	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#27272a")).
			Foreground(lipgloss.Color("#a1a1aa")).
			Padding(0, 1)

	recordingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3f3f46"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))
)

// Composer is the controller surface the terminal drives
type Composer interface {
	Post(intent composer.Intent)
	Mode() composer.Mode
}

// Clipboard supplies pasted text
type Clipboard interface {
	PasteText() (string, error)
}

type modeMsg struct {
	mode composer.Mode
}

type noticeMsg struct {
	text   string
	urgent bool
}

// UI runs the terminal composer.
//
// ModeChanged, Notify and Send may be called from any goroutine and never
// block; they are dropped unless Run is active.
type UI struct {
	program *tea.Program
	started atomic.Bool
	done    atomic.Bool

	outbox *mailbox
}

// New creates the terminal composer
func New(c Composer, t *i18n.Translator, clip Clipboard) *UI {
	if t == nil {
		t = i18n.NewDefaultTranslator(i18n.LanguageEnglish)
	}
	return &UI{
		program: tea.NewProgram(newModel(c, t, clip)),
		outbox:  newMailbox(),
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	u.started.Store(true)
	stop := make(chan struct{})
	go u.outbox.pump(u.program.Send, stop)

	_, err := u.program.Run()
	u.done.Store(true)
	close(stop)
	return err
}

func (u *UI) active() bool {
	return u.started.Load() && !u.done.Load()
}

// ModeChanged redraws for a new composer mode. Thread-safe.
func (u *UI) ModeChanged(mode composer.Mode) {
	if u.active() {
		u.outbox.setMode(mode)
	}
}

// Notify shows a one-line notice above the help line. Thread-safe.
func (u *UI) Notify(text string, urgent bool) {
	if u.active() {
		u.outbox.addNotice(noticeMsg{text: text, urgent: urgent})
	}
}

// Send shows a notification as a notice, so the terminal composer can
// stand in for the desktop notification center
func (u *UI) Send(n *notification.Notification) error {
	if n == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	u.Notify(n.Message, n.Type == notification.TypeError || n.Type == notification.TypeWarning)
	return nil
}

// Quit tells Bubble Tea to exit
func (u *UI) Quit() {
	u.program.Quit()
}

// mailbox hands messages to Bubble Tea off the caller's goroutine. Only the
// newest mode is kept; notices are delivered in order.
type mailbox struct {
	mu      sync.Mutex
	mode    *composer.Mode
	notices []noticeMsg
	wake    chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (b *mailbox) setMode(mode composer.Mode) {
	b.mu.Lock()
	b.mode = &mode
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) addNotice(n noticeMsg) {
	b.mu.Lock()
	b.notices = append(b.notices, n)
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// take empties the mailbox, mode first
func (b *mailbox) take() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()

	var msgs []tea.Msg
	if b.mode != nil {
		msgs = append(msgs, modeMsg{mode: *b.mode})
		b.mode = nil
	}
	for _, n := range b.notices {
		msgs = append(msgs, n)
	}
	b.notices = nil
	return msgs
}

func (b *mailbox) pump(send func(tea.Msg), stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-b.wake:
			for _, msg := range b.take() {
				send(msg)
			}
		}
	}
}

type model struct {
	c    Composer
	t    *i18n.Translator
	clip Clipboard

	input       textinput.Model
	attachments int
	mode        composer.Mode
	notice      string
	urgent      bool
	width       int
}

func newModel(c Composer, t *i18n.Translator, clip Clipboard) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = t.Translate("composer.placeholder")
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	m := model{c: c, t: t, clip: clip, input: ti}
	if c != nil {
		m.mode = c.Mode()
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode.Kind {
		case composer.Recording:
			return m.updateRecording(msg)
		case composer.Preview:
			return m.updatePreview(msg)
		}
		return m.updateTextEntry(msg)

	case modeMsg:
		m.mode = msg.mode
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.urgent = msg.urgent
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 4 {
			m.input.Width = msg.Width - len(m.input.Prompt) - 1
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) post(intent composer.Intent) {
	if m.c != nil {
		m.c.Post(intent)
	}
}

func (m model) draft() composer.Draft {
	return composer.Draft{Text: m.input.Value(), Attachments: m.attachments}
}

func (m model) updateTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Intents are handled in order: the primary action sees the
		// current draft before it is cleared.
		hadContent := m.draft().HasContent()
		m.post(composer.Primary())
		if hadContent {
			m.input.Reset()
			m.attachments = 0
			m.post(composer.SetDraft(m.draft()))
		}
		m.notice = ""
		return m, nil

	case "ctrl+v":
		if m.clip == nil {
			return m, nil
		}
		text, err := m.clip.PasteText()
		if err != nil {
			m.notice, m.urgent = err.Error(), true
			return m, nil
		}
		if text == "" {
			return m, nil
		}
		m.input.SetValue(m.input.Value() + text)
		m.input.CursorEnd()
		m.post(composer.SetDraft(m.draft()))
		return m, nil

	case "ctrl+t":
		m.attachments++
		m.post(composer.SetDraft(m.draft()))
		return m, nil

	case "esc":
		if m.attachments > 0 {
			m.attachments = 0
			m.post(composer.SetDraft(m.draft()))
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.post(composer.SetDraft(m.draft()))
	}
	return m, cmd
}

func (m model) updateRecording(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.post(composer.Stop())
	case "esc":
		m.post(composer.Cancel())
	}
	return m, nil
}

func (m model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "p":
		m.post(composer.TogglePlayback())
	case "enter":
		m.post(composer.Send())
	case "d", "backspace", "delete":
		m.post(composer.Discard())
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n\n")

	switch m.mode.Kind {
	case composer.Recording:
		b.WriteString(recordingStyle.Render("● " + FormatClock(m.mode.Elapsed)))
		b.WriteString("  ")
		b.WriteString(waveStyle.Render(Waveform(m.mode.ElapsedSeconds(), 24)))
		b.WriteString("\n")
	case composer.Preview:
		b.WriteString(m.previewLine())
		b.WriteString("\n")
	default:
		b.WriteString(m.input.View())
		b.WriteString("  ")
		b.WriteString(actionStyle.Render("[" + m.primaryLabel() + "]"))
		b.WriteString("\n")
		if m.attachments > 0 {
			b.WriteString(helpStyle.Render(m.t.TranslateWithFormat("composer.attachments", map[string]string{"count": strconv.Itoa(m.attachments)})))
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		style := noticeStyle
		if m.urgent {
			style = urgentStyle
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m model) status() string {
	switch m.mode.Kind {
	case composer.Recording:
		return m.t.TranslateWithFormat("status.recording", map[string]string{"elapsed": FormatClock(m.mode.Elapsed)})
	case composer.Preview:
		return m.t.TranslateWithFormat("status.preview", map[string]string{"seconds": strconv.Itoa(m.artifactSeconds())})
	}
	return m.t.Translate("status.text_entry")
}

func (m model) primaryLabel() string {
	if composer.ResolvePrimaryAction(composer.TextEntry, m.draft()) == composer.ActionSend {
		return m.t.Translate("composer.send")
	}
	return m.t.Translate("menu.record")
}

func (m model) artifactSeconds() int {
	if m.mode.Artifact == nil {
		return 0
	}
	return m.mode.Artifact.DurationSeconds
}

func (m model) previewLine() string {
	icon, label := "▶", m.t.Translate("status.paused")
	if m.mode.Playback == preview.Playing {
		icon, label = "❚❚", m.t.Translate("status.playing")
	}

	total := time.Duration(m.artifactSeconds()) * time.Second
	return actionStyle.Render(icon) + " " +
		ProgressBar(m.mode.Position, total, 24) + " " +
		noticeStyle.Render(FormatClock(m.mode.Position)+" / "+FormatClock(total)+"  "+label)
}

func (m model) help() string {
	switch m.mode.Kind {
	case composer.Recording:
		return m.t.Translate("composer.help_record")
	case composer.Preview:
		return m.t.Translate("composer.help_preview")
	}
	return m.t.Translate("composer.help_text")
}

// FormatClock renders d as m:ss
func FormatClock(d time.Duration) string {
	s := int(d / time.Second)
	if s < 0 {
		s = 0
	}
	sec := strconv.Itoa(s % 60)
	if len(sec) == 1 {
		sec = "0" + sec
	}
	return strconv.Itoa(s/60) + ":" + sec
}

var waveBars = []rune("▁▂▃▅▆▇▆▅▃▂")

// Waveform is a decorative level meter. It shifts once per second and
// carries no signal information.
func Waveform(step, width int) string {
	if width <= 0 {
		return ""
	}
	out := make([]rune, width)
	for i := range out {
		out[i] = waveBars[(i+step)%len(waveBars)]
	}
	return string(out)
}

// ProgressBar renders pos out of total in width cells
func ProgressBar(pos, total time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = int(int64(width) * int64(pos) / int64(total))
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return progressStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("─", width-filled))
}
