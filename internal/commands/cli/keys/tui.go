package keys

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldTypeRadio = iota
	fieldTypeNumeric
)

type option struct {
	value       string
	description string
}

type fieldConfig struct {
	name         string
	description  string
	fieldType    int
	options      []option // For radio fields.
	selected     int      // For radio fields.
	numericValue string   // For numeric fields.
	minValue     int      // For numeric fields.
	maxValue     int      // For numeric fields.
	digits       int      // For numeric fields (zero-padding).
}

// keyChoice is what the generate command needs to know about the keys to produce.
type keyChoice struct {
	Type   string
	Length string
	Count  int
}

var lengthOptions = map[string][]option{
	"des": {
		{"single", "Single length DES (8 bytes)"},
		{"double", "Double length 3DES (16 bytes)"},
		{"triple", "Triple length 3DES (24 bytes)"},
	},
	"aes": {
		{"16", "AES-128"},
		{"24", "AES-192"},
		{"32", "AES-256"},
	},
}

type keyChoiceModel struct {
	choice       keyChoice
	currentField int
	fields       []fieldConfig
	done         bool
	cancelled    bool
}

// newKeyChoiceModel creates a new TUI model for choosing the keys to generate.
func newKeyChoiceModel() keyChoiceModel {
	fields := []fieldConfig{
		{
			name:        "Type",
			description: "Key Type",
			fieldType:   fieldTypeRadio,
			options: []option{
				{"des", "DES / triple DES"},
				{"aes", "AES"},
			},
		},
		{
			name:        "Length",
			description: "Key Length",
			fieldType:   fieldTypeRadio,
			options:     lengthOptions["des"],
			selected:    1, // Default to double length.
		},
		{
			name:         "Count",
			description:  "Number of Keys",
			fieldType:    fieldTypeNumeric,
			numericValue: "01",
			minValue:     1,
			maxValue:     maxKeyCount,
			digits:       2,
		},
	}

	m := keyChoiceModel{fields: fields}
	m.updateChoiceFromSelection()

	return m
}

// Init initializes the model.
func (m keyChoiceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m keyChoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	currentField := &m.fields[m.currentField]

	switch keyMsg.String() {
	case "ctrl+c", "q":
		m.cancelled = true

		return m, tea.Quit
	case "enter":
		m.updateChoiceFromSelection()
		if m.currentField >= len(m.fields)-1 {
			m.done = true

			return m, tea.Quit
		}
		m.currentField++
	case "tab":
		if m.currentField < len(m.fields)-1 {
			m.currentField++
		}
	case "shift+tab":
		if m.currentField > 0 {
			m.currentField--
		}
	case "up", "k":
		switch currentField.fieldType {
		case fieldTypeRadio:
			if currentField.selected > 0 {
				currentField.selected--
			}
		case fieldTypeNumeric:
			m.incrementNumericValue(1)
		}
	case "down", "j":
		switch currentField.fieldType {
		case fieldTypeRadio:
			if currentField.selected < len(currentField.options)-1 {
				currentField.selected++
			}
		case fieldTypeNumeric:
			m.decrementNumericValue(1)
		}
	case "backspace":
		m.handleBackspace()
	default:
		if s := keyMsg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.handleNumericInput(s[0])
		}
	}

	m.syncLengthOptions()

	return m, nil
}

// syncLengthOptions swaps the length choices when the key type changes.
func (m *keyChoiceModel) syncLengthOptions() {
	keyType := m.fields[0].options[m.fields[0].selected].value
	length := &m.fields[1]
	if length.options[0].value == lengthOptions[keyType][0].value {
		return
	}
	length.options = lengthOptions[keyType]
	length.selected = 0
}

func (m *keyChoiceModel) incrementNumericValue(amount int) {
	f := &m.fields[m.currentField]
	if f.fieldType != fieldTypeNumeric {
		return
	}
	if v := parseNumericValue(f.numericValue) + amount; v <= f.maxValue {
		f.numericValue = formatNumericValue(v, f.digits)
	}
}

func (m *keyChoiceModel) decrementNumericValue(amount int) {
	f := &m.fields[m.currentField]
	if f.fieldType != fieldTypeNumeric {
		return
	}
	if v := parseNumericValue(f.numericValue) - amount; v >= f.minValue {
		f.numericValue = formatNumericValue(v, f.digits)
	}
}

// handleNumericInput appends a typed digit when the result stays in range.
func (m *keyChoiceModel) handleNumericInput(char byte) {
	f := &m.fields[m.currentField]
	if f.fieldType != fieldTypeNumeric {
		return
	}
	v := parseNumericValue(strings.TrimLeft(f.numericValue, "0") + string(char))
	if v >= f.minValue && v <= f.maxValue {
		f.numericValue = formatNumericValue(v, f.digits)
	}
}

// handleBackspace drops the last digit, never going below the minimum.
func (m *keyChoiceModel) handleBackspace() {
	f := &m.fields[m.currentField]
	if f.fieldType != fieldTypeNumeric {
		return
	}
	digits := strings.TrimLeft(f.numericValue, "0")
	v := f.minValue
	if len(digits) > 1 {
		v = max(parseNumericValue(digits[:len(digits)-1]), f.minValue)
	}
	f.numericValue = formatNumericValue(v, f.digits)
}

func parseNumericValue(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return parsed
}

func formatNumericValue(value, digits int) string {
	return fmt.Sprintf("%0*d", digits, value)
}

// updateChoiceFromSelection copies the current selections into the choice.
func (m *keyChoiceModel) updateChoiceFromSelection() {
	for _, f := range m.fields {
		switch f.name {
		case "Type":
			m.choice.Type = f.options[f.selected].value
		case "Length":
			m.choice.Length = f.options[f.selected].value
		case "Count":
			m.choice.Count = parseNumericValue(f.numericValue)
		}
	}
}

// View renders the current state of the model.
func (m keyChoiceModel) View() string {
	if m.done {
		return "Key selection confirmed.\n"
	}
	if m.cancelled {
		return "Operation cancelled.\n"
	}

	var b strings.Builder
	b.WriteString("Generate Keys\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Field %d of %d\n\n", m.currentField+1, len(m.fields))

	f := m.fields[m.currentField]
	fmt.Fprintf(&b, "▶ %s: %s\n\n", f.name, f.description)

	switch f.fieldType {
	case fieldTypeRadio:
		for j, o := range f.options {
			selector := "  ○ "
			if j == f.selected {
				selector = "  ● "
			}
			fmt.Fprintf(&b, "%s%s - %s\n", selector, o.value, o.description)
		}
	case fieldTypeNumeric:
		fmt.Fprintf(&b, "  [ %s ] (Range: %02d-%02d)\n", f.numericValue, f.minValue, f.maxValue)
	}
	b.WriteString("\n")

	if m.currentField > 0 {
		b.WriteString("Completed fields:\n")
		for _, done := range m.fields[:m.currentField] {
			value := done.numericValue
			if done.fieldType == fieldTypeRadio {
				value = done.options[done.selected].value
			}
			fmt.Fprintf(&b, "  %s: %s\n", done.name, value)
		}
		b.WriteString("\n")
	}

	b.WriteString("Navigation:\n")
	b.WriteString("  ↑/↓ or j/k: Select option or increment/decrement value\n")
	b.WriteString("  Tab/Shift+Tab: Next/Previous field\n")
	b.WriteString("  Enter: Confirm and continue\n")
	b.WriteString("  q or Ctrl+C: Quit\n")

	return b.String()
}

// runKeyChoiceTUI starts the interactive key selection.
func runKeyChoiceTUI() (keyChoice, bool, error) {
	finalModel, err := tea.NewProgram(newKeyChoiceModel()).Run()
	if err != nil {
		return keyChoice{}, false, err
	}

	m := finalModel.(keyChoiceModel)
	m.updateChoiceFromSelection()

	return m.choice, !m.cancelled, nil
}
