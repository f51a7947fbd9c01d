package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contactbook/contact"
	"contactbook/errs"
)

// DefaultToastDuration is how long a notification stays on screen.
const DefaultToastDuration = 3 * time.Second

// focus identifies the widget receiving key presses.
type focus int

const (
	focusName focus = iota
	focusEmail
	focusList
	focusCount
)

type toast struct {
	text    string
	isError bool
}

const activityLoading = "Loading..."

// Model is the root Bubble Tea model for the contact screen.
//
// Storage calls run as commands. While one is in flight the model is busy
// and further submits, deletes or reloads are ignored, so at most one
// storage operation is pending at a time. The initial load counts as one.
type Model struct {
	svc contact.Service

	name  textinput.Model
	email textinput.Model
	focus focus

	contacts []contact.Contact
	cursor   int
	busy     bool
	activity string

	toast         toast
	toastSeq      int
	toastDuration time.Duration

	keys  keyMap
	help  help.Model
	width int
}

type Option func(m *Model)

// WithToastDuration overrides DefaultToastDuration.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		m.toastDuration = d
	}
}

// NewModel creates the screen backed by svc with the name field focused.
func NewModel(svc contact.Service, opts ...Option) Model {
	name := textinput.New()
	name.Placeholder = "Contact name"
	name.Prompt = ""
	name.Focus()

	email := textinput.New()
	email.Placeholder = "name@example.com"
	email.Prompt = ""

	m := Model{
		svc:           svc,
		name:          name,
		email:         email,
		focus:         focusName,
		busy:          true,
		activity:      activityLoading,
		toastDuration: DefaultToastDuration,
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
	for _, fn := range opts {
		fn(&m)
	}
	return m
}

// Init loads the stored contacts.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case contactsLoadedMsg:
		m.busy = false
		m.setContacts(msg.contacts)
		if msg.err != nil {
			return m, m.showError(msg.err)
		}
		return m, nil

	case contactAddedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.showError(msg.err)
		}
		m.setContacts(msg.contacts)
		m.name.Reset()
		m.email.Reset()
		m.setFocus(focusName)
		return m, m.showInfo(fmt.Sprintf("Added %s", msg.stored.Name))

	case contactRemovedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.showError(msg.err)
		}
		m.setContacts(msg.contacts)
		return m, m.showInfo(fmt.Sprintf("Removed %s", msg.removed.Name))

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = toast{}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes global bindings first, then routes to the focused
// widget.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if m.busy {
			return m, nil
		}
		m.busy, m.activity = true, activityLoading
		return m, m.loadCmd()
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	return m.updateInput(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.contacts)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if m.busy || len(m.contacts) == 0 {
			return m, nil
		}
		m.busy, m.activity = true, "Removing..."
		return m, m.removeCmd(m.cursor, m.contacts[m.cursor])
	}
	return m, nil
}

// updateInput feeds msg to the focused field and keeps the result only when
// it passes the field's keystroke filter.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := &m.name
	filter := contact.FilterNameInput
	if m.focus == focusEmail {
		input = &m.email
		filter = contact.FilterEmailInput
	}

	previous, pos := input.Value(), input.Position()

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)

	candidate := input.Value()
	switch accepted := filter(previous, candidate); {
	case accepted == candidate:
	case accepted == previous:
		input.SetValue(previous)
		input.SetCursor(pos)
	default:
		input.SetValue(accepted)
		input.CursorEnd()
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	m.busy, m.activity = true, "Saving..."
	return m, m.addCmd(contact.Contact{Name: m.name.Value(), Email: m.email.Value()})
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.name.Blur()
	m.email.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusEmail:
		m.email.Focus()
	}
}

func (m *Model) setContacts(contacts []contact.Contact) {
	m.contacts = contacts
	if m.cursor >= len(contacts) {
		m.cursor = len(contacts) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) showInfo(text string) tea.Cmd {
	return m.showToast(toast{text: text})
}

func (m *Model) showError(err error) tea.Cmd {
	return m.showToast(toast{text: errs.ErrorMessage(err), isError: true})
}

func (m *Model) showToast(t toast) tea.Cmd {
	m.toast = t
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (m Model) loadCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		contacts, err := svc.LoadContacts(context.Background())
		return contactsLoadedMsg{contacts: contacts, err: err}
	}
}

func (m Model) addCmd(c contact.Contact) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		stored, err := svc.AddContact(ctx, c)
		if err != nil {
			return contactAddedMsg{err: err}
		}
		contacts, err := svc.ListContacts(ctx)
		return contactAddedMsg{stored: stored, contacts: contacts, err: err}
	}
}

func (m Model) removeCmd(position int, target contact.Contact) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		if err := svc.RemoveContact(ctx, position); err != nil {
			return contactRemovedMsg{err: err}
		}
		contacts, err := svc.ListContacts(ctx)
		return contactRemovedMsg{removed: target, contacts: contacts, err: err}
	}
}

// View renders the form, the list, the toast line and the help bar.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Contacts"))
	b.WriteString("\n\n")
	b.WriteString(m.viewField("Name", m.name, m.focus == focusName))
	b.WriteString("\n")
	b.WriteString(m.viewField("Email", m.email, m.focus == focusEmail))
	b.WriteString("\n")

	style := listStyle
	if m.focus == focusList {
		style = focusedListStyle
	}
	b.WriteString(style.Render(m.viewList()))
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) viewField(label string, input textinput.Model, focused bool) string {
	style := labelStyle
	if focused {
		style = focusedLabelStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, style.Render(label), input.View())
}

func (m Model) viewList() string {
	if len(m.contacts) == 0 {
		if m.busy && m.activity == activityLoading {
			return dimStyle.Render("Loading contacts")
		}
		return dimStyle.Render("No contacts yet")
	}

	lines := make([]string, len(m.contacts))
	for i, c := range m.contacts {
		if i == m.cursor && m.focus == focusList {
			lines[i] = selectedStyle.Render(fmt.Sprintf("> %s  %s", c.Name, c.Email))
			continue
		}
		lines[i] = fmt.Sprintf("  %s  %s", c.Name, dimStyle.Render(c.Email))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStatus() string {
	switch {
	case m.toast.text != "" && m.toast.isError:
		return errorToastStyle.Render(m.toast.text)
	case m.toast.text != "":
		return infoToastStyle.Render(m.toast.text)
	case m.busy:
		return dimStyle.Render(m.activity)
	default:
		return ""
	}
}
