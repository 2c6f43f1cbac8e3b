package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/small-frappuccino/richpresence/pkg/controller"
	"github.com/small-frappuccino/richpresence/pkg/files"
)

// Field indexes, in tab order.
const (
	fieldClientID = iota
	fieldState
	fieldDetails
	fieldLargeImage
	fieldLargeText
	fieldSmallImage
	fieldSmallText
	fieldInterval
	fieldButton1Label
	fieldButton1URL
	fieldButton2Label
	fieldButton2URL
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Client ID",
	"State",
	"Details",
	"Large Image",
	"Large Text",
	"Small Image",
	"Small Text",
	"Interval (s)",
	"Button 1 Label",
	"Button 1 URL",
	"Button 2 Label",
	"Button 2 URL",
}

var fieldPlaceholders = [fieldCount]string{
	"blank uses CLIENT_ID",
	"what you are doing",
	"more detail",
	"asset key",
	"hover text",
	"asset key",
	"hover text",
	"5-3600",
	"",
	"https://",
	"",
	"https://",
}

// FieldForm is the profile editor: one text input per Form field.
type FieldForm struct {
	inputs     [fieldCount]textinput.Model
	focusIndex int
	focused    bool
	width      int
}

// NewFieldForm creates an empty form.
func NewFieldForm() *FieldForm {
	ff := &FieldForm{focused: true}
	for i := range ff.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 128
		ti.Prompt = ""
		ff.inputs[i] = ti
	}
	ff.inputs[fieldInterval].CharLimit = 4
	ff.inputs[fieldInterval].Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}
	ff.inputs[fieldClientID].CharLimit = 32
	ff.inputs[fieldButton1URL].CharLimit = 512
	ff.inputs[fieldButton2URL].CharLimit = 512
	ff.focusCurrent()
	return ff
}

// Fill replaces every field value.
func (ff *FieldForm) Fill(f controller.Form) {
	values := [fieldCount]string{
		f.ClientID,
		f.State,
		f.Details,
		f.LargeImage,
		f.LargeText,
		f.SmallImage,
		f.SmallText,
		strconv.Itoa(f.Interval),
		f.Buttons[0].Label,
		f.Buttons[0].URL,
		f.Buttons[1].Label,
		f.Buttons[1].URL,
	}
	for i, v := range values {
		ff.inputs[i].SetValue(v)
		ff.inputs[i].CursorEnd()
	}
}

// Form returns the current field values.
func (ff *FieldForm) Form() controller.Form {
	v := func(i int) string { return ff.inputs[i].Value() }
	interval, err := strconv.Atoi(strings.TrimSpace(v(fieldInterval)))
	if err != nil {
		interval = 0
	}
	return controller.Form{
		ClientID:   v(fieldClientID),
		State:      v(fieldState),
		Details:    v(fieldDetails),
		LargeImage: v(fieldLargeImage),
		LargeText:  v(fieldLargeText),
		SmallImage: v(fieldSmallImage),
		SmallText:  v(fieldSmallText),
		Interval:   interval,
		Buttons: [files.MaxButtons]files.Button{
			{Label: v(fieldButton1Label), URL: v(fieldButton1URL)},
			{Label: v(fieldButton2Label), URL: v(fieldButton2URL)},
		},
	}
}

// FocusNext moves to the next field.
func (ff *FieldForm) FocusNext() {
	ff.blurAll()
	ff.focusIndex = (ff.focusIndex + 1) % fieldCount
	ff.focusCurrent()
}

// FocusPrev moves to the previous field.
func (ff *FieldForm) FocusPrev() {
	ff.blurAll()
	ff.focusIndex--
	if ff.focusIndex < 0 {
		ff.focusIndex = fieldCount - 1
	}
	ff.focusCurrent()
}

// SetFocused focuses or blurs the whole form.
func (ff *FieldForm) SetFocused(focused bool) {
	ff.focused = focused
	ff.blurAll()
	if focused {
		ff.focusCurrent()
	}
}

// SetWidth sets the rendering width.
func (ff *FieldForm) SetWidth(w int) {
	ff.width = w
	inputWidth := w - labelWidth - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	for i := range ff.inputs {
		ff.inputs[i].Width = inputWidth
	}
}

func (ff *FieldForm) blurAll() {
	for i := range ff.inputs {
		ff.inputs[i].Blur()
	}
}

func (ff *FieldForm) focusCurrent() {
	if ff.focused {
		ff.inputs[ff.focusIndex].Focus()
	}
}

// Update forwards a message to the focused input.
func (ff *FieldForm) Update(msg tea.Msg) tea.Cmd {
	if !ff.focused {
		return nil
	}
	var cmd tea.Cmd
	ff.inputs[ff.focusIndex], cmd = ff.inputs[ff.focusIndex].Update(msg)
	return cmd
}

const labelWidth = 16

// View renders the form rows.
func (ff *FieldForm) View(st styles) string {
	rows := make([]string, 0, fieldCount+2)
	for i := range ff.inputs {
		if i == fieldButton1Label {
			rows = append(rows, "")
		}
		label := st.label.Width(labelWidth).Render(fieldLabels[i])
		input := st.entry.Render(ff.inputs[i].View())
		if ff.focused && i == ff.focusIndex {
			label = st.focusedLabel.Width(labelWidth).Render(fieldLabels[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", input))
	}
	return strings.Join(rows, "\n")
}
