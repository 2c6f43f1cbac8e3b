package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/discordrpc"
	"github.com/small-frappuccino/richpresence/pkg/theme"
)

const (
	statusTickInterval = 500 * time.Millisecond
	flashDuration      = 3 * time.Second

	profilePanelWidth = 24
	minWidth          = 72
	minHeight         = 20
)

// Focus targets.
const (
	focusForm     = 0
	focusProfiles = 1
)

// Model is the bubbletea model of the editor. It implements controller.View;
// the controller is only ever called from Update, so the View methods run on
// the program goroutine.
type Model struct {
	ctrl *controller.Controller

	form     *FieldForm
	profiles []string
	active   string
	cursor   int
	status   controller.Status

	// UI state
	focus         int
	activeOverlay int
	confirmMode   int
	width         int
	height        int
	st            styles

	// Prompt overlay
	prompt     textinput.Model
	promptKind int

	// Notice overlay and transient status text
	notice   controller.Notice
	flash    string
	flashSeq int

	// Commands produced by View callbacks, returned from the next Update.
	pending []tea.Cmd

	onThemeChange func(name string)
	quitting      bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithThemeChange registers fn to be called with the new theme name after a toggle.
func WithThemeChange(fn func(name string)) ModelOption {
	return func(m *Model) { m.onThemeChange = fn }
}

// NewModel creates the TUI model. Bind a controller before running it.
func NewModel(opts ...ModelOption) *Model {
	prompt := textinput.New()
	prompt.Prompt = ""
	prompt.CharLimit = 64
	prompt.Width = 40

	m := &Model{
		form:   NewFieldForm(),
		prompt: prompt,
		st:     newStyles(theme.Current()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bind attaches the controller the model drives.
func (m *Model) Bind(ctrl *controller.Controller) {
	m.ctrl = ctrl
}

// Gather implements controller.View.
func (m *Model) Gather() controller.Form {
	return m.form.Form()
}

// Show implements controller.View.
func (m *Model) Show(f controller.Form) {
	m.form.Fill(f)
}

// ListProfiles implements controller.View.
func (m *Model) ListProfiles(names []string, active string) {
	m.profiles = append(m.profiles[:0], names...)
	m.active = active
	m.cursor = 0
	for i, n := range names {
		if n == active {
			m.cursor = i
			break
		}
	}
}

// ShowStatus implements controller.View.
func (m *Model) ShowStatus(s controller.Status) {
	m.status = s
}

// Notify implements controller.View. Info notices flash in the status bar;
// warnings and errors open a dialog.
func (m *Model) Notify(n controller.Notice) {
	if n.Level == controller.LevelInfo {
		m.flash = n.Message
		if m.flash == "" {
			m.flash = n.Title
		}
		m.flashSeq++
		seq := m.flashSeq
		m.pending = append(m.pending, tea.Tick(flashDuration, func(time.Time) tea.Msg {
			return clearFlashMsg{seq: seq}
		}))
		return
	}
	m.notice = n
	m.activeOverlay = overlayNotice
	m.confirmMode = confirmNone
	m.prompt.Blur()
}

// Init returns the initial commands.
func (m *Model) Init() tea.Cmd {
	cmds := m.takePending()
	cmds = append(cmds, textinput.Blink, statusTick())
	if m.ctrl != nil {
		cmds = append(cmds, waitForReport(m.ctrl.Reports()))
	}
	return tea.Batch(cmds...)
}

// Update processes messages and returns the updated model and commands.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.SetWidth(m.width - profilePanelWidth - 6)

	case reportMsg:
		m.ctrl.HandleReport(msg.Report)
		cmds = append(cmds, waitForReport(m.ctrl.Reports()))

	case reportsClosedMsg:

	case statusTickMsg:
		if m.ctrl != nil {
			m.ctrl.ShowStatus()
		}
		if !m.quitting {
			cmds = append(cmds, statusTick())
		}

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		if m.activeOverlay == overlayPrompt {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.form.Update(msg))
		}
	}

	cmds = append(cmds, m.takePending()...)
	return m, tea.Batch(cmds...)
}

func (m *Model) takePending() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}
	if m.activeOverlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		if m.broadcasting() {
			m.confirmMode = confirmQuit
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil

	case key.Matches(msg, globalKeys.Save):
		_ = m.ctrl.Save()
		return nil

	case key.Matches(msg, globalKeys.Start):
		_ = m.ctrl.Start()
		return nil

	case key.Matches(msg, globalKeys.Stop):
		m.ctrl.Stop()
		return nil

	case key.Matches(msg, globalKeys.New):
		return m.openPrompt(promptNewProfile)

	case key.Matches(msg, globalKeys.Copy):
		if m.active == "" {
			m.Notify(controller.Notice{Level: controller.LevelWarning, Title: "Copy Profile", Message: "Select a profile to copy first."})
			return nil
		}
		return m.openPrompt(promptCopyProfile)

	case key.Matches(msg, globalKeys.Delete):
		if m.active == "" {
			m.Notify(controller.Notice{Level: controller.LevelWarning, Title: "Delete", Message: "No profile selected."})
			return nil
		}
		m.confirmMode = confirmDelete
		return nil

	case key.Matches(msg, globalKeys.Theme):
		m.toggleTheme()
		return nil

	case key.Matches(msg, globalKeys.Profiles):
		m.setFocus(focusProfiles)
		return nil
	}

	if m.focus == focusProfiles {
		return m.handleProfileListKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, formKeys.Next):
		m.form.FocusNext()
		return nil
	case key.Matches(msg, formKeys.Prev):
		m.form.FocusPrev()
		return nil
	}
	return m.form.Update(msg)
}

func (m *Model) handleProfileListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, listKeys.Down):
		if m.cursor < len(m.profiles)-1 {
			m.cursor++
		}
	case key.Matches(msg, listKeys.Select):
		if m.cursor < len(m.profiles) {
			if err := m.ctrl.Select(m.profiles[m.cursor]); err == nil {
				m.setFocus(focusForm)
			}
		}
	case key.Matches(msg, listKeys.Back):
		m.setFocus(focusForm)
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		mode := m.confirmMode
		m.confirmMode = confirmNone
		switch mode {
		case confirmDelete:
			_ = m.ctrl.DeleteProfile()
		case confirmQuit:
			m.ctrl.Stop()
			return m.doQuit()
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch m.activeOverlay {
	case overlayHelp:
		if key.Matches(msg, overlayKeys.Cancel) || key.Matches(msg, globalKeys.Help) {
			m.activeOverlay = overlayNone
		}
		return nil

	case overlayNotice:
		if key.Matches(msg, overlayKeys.Submit) || key.Matches(msg, overlayKeys.Cancel) {
			m.activeOverlay = overlayNone
		}
		return nil

	case overlayPrompt:
		switch {
		case key.Matches(msg, overlayKeys.Submit):
			return m.submitPrompt()
		case key.Matches(msg, overlayKeys.Cancel):
			m.closePrompt()
			return nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) openPrompt(kind int) tea.Cmd {
	m.promptKind = kind
	m.prompt.SetValue("")
	m.activeOverlay = overlayPrompt
	m.form.SetFocused(false)
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.prompt.Blur()
	m.activeOverlay = overlayNone
	m.form.SetFocused(m.focus == focusForm)
}

// submitPrompt closes the prompt before calling the controller so a failure
// can open its own notice.
func (m *Model) submitPrompt() tea.Cmd {
	name := m.prompt.Value()
	kind := m.promptKind
	m.closePrompt()
	switch kind {
	case promptNewProfile:
		_ = m.ctrl.NewProfile(name)
	case promptCopyProfile:
		_ = m.ctrl.CopyProfile(name)
	}
	return nil
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.form.SetFocused(f == focusForm)
}

func (m *Model) toggleTheme() {
	th := theme.Toggle()
	m.st = newStyles(th)
	if m.onThemeChange != nil {
		m.onThemeChange(th.Name)
	}
}

func (m *Model) broadcasting() bool {
	return m.status.State == discordrpc.StateConnecting || m.status.State == discordrpc.StateBroadcasting
}

func (m *Model) doQuit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				m.st.dim.Render(fmt.Sprintf("Need %dx%d, have %s", minWidth, minHeight, sizeStr)),
			))
	}

	header := m.renderHeader()
	bodyHeight := m.height - lipgloss.Height(header) - 1

	listStyle := m.st.panel
	formStyle := m.st.focusedPanel
	if m.focus == focusProfiles {
		listStyle, formStyle = m.st.focusedPanel, m.st.panel
	}
	list := listStyle.
		Width(profilePanelWidth).
		Height(bodyHeight - 2).
		Render(m.renderProfileList(bodyHeight - 2))
	form := formStyle.
		Width(m.width - profilePanelWidth - 4).
		Height(bodyHeight - 2).
		Render(m.form.View(m.st))

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, form)
	view := lipgloss.JoinVertical(lipgloss.Left, header, body, renderStatusBar(m, m.width))

	var overlay string
	switch m.activeOverlay {
	case overlayHelp:
		overlay = m.renderHelp()
	case overlayPrompt:
		overlay = m.renderPrompt()
	case overlayNotice:
		overlay = m.renderNotice()
	}
	if overlay != "" {
		view = renderOverlay(m.st, view, overlay, m.width, m.height)
	}
	return m.st.app.Render(view)
}

func (m *Model) renderHeader() string {
	title := m.st.header.Render(" Discord Rich Presence")
	toggle := m.st.hint.Render("Ctrl+t " + theme.Current().ToggleLabel() + " ")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(toggle)
	if gap < 1 {
		gap = 1
	}
	return title + lipgloss.NewStyle().Width(gap).Render("") + toggle
}
