package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"daing/internal/ui/theme"
)

// Command is one entry of the command line. Arg names the required
// argument; Choices, when set, are its only accepted values.
type Command struct {
	Name    string
	Arg     string
	Choices []string
	Help    string
}

// Commands lists everything the root model executes.
var Commands = []Command{
	{Name: "scan", Help: "go to the scan tab"},
	{Name: "history", Help: "go to scan history"},
	{Name: "dataset", Help: "go to the auto-collected dataset"},
	{Name: "analytics", Help: "go to analytics"},
	{Name: "settings", Help: "go to settings"},
	{Name: "analyze", Arg: "photo", Help: "grade a photo from disk"},
	{Name: "refresh", Help: "reload history and dataset"},
	{Name: "server", Arg: "url", Help: "change the grading server"},
	{Name: "auto-save", Arg: "on|off", Choices: []string{"on", "off"}, Help: "keep analyzed photos as samples"},
}

// PaletteSubmitMsg carries a command that passed validation.
type PaletteSubmitMsg struct {
	Name string
	Arg  string
}

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

const maxRecall = 20

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().Foreground(theme.Lavender)
	helpStyle    = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// ParseCommand splits input into a known command and its argument.
func ParseCommand(input string) (Command, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, "", fmt.Errorf("empty command")
	}
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	for _, c := range Commands {
		if c.Name != strings.ToLower(name) {
			continue
		}
		switch {
		case c.Arg == "" && arg != "":
			return c, "", fmt.Errorf("%s takes no argument", c.Name)
		case c.Arg != "" && arg == "":
			return c, "", fmt.Errorf("usage: %s <%s>", c.Name, c.Arg)
		case len(c.Choices) > 0 && !oneOf(strings.ToLower(arg), c.Choices):
			return c, "", fmt.Errorf("usage: %s %s", c.Name, c.Arg)
		}
		if len(c.Choices) > 0 {
			arg = strings.ToLower(arg)
		}
		return c, arg, nil
	}
	return Command{}, "", fmt.Errorf("unknown command: %s", name)
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// matches returns the commands whose name starts with the first word typed.
func matches(input string) []Command {
	name, _, _ := strings.Cut(strings.TrimLeft(input, " "), " ")
	name = strings.ToLower(name)
	var out []Command
	for _, c := range Commands {
		if strings.HasPrefix(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Palette is the ':' command line. Tab completes a unique command name,
// up and down walk earlier submissions, and invalid input stays open with
// the reason shown underneath.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	problem string
	recall  []string
	cursor  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "command"
	ti.CharLimit = 512
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Value is the text typed so far.
func (p Palette) Value() string { return p.input.Value() }

// Problem is the validation error of the last submission, if any.
func (p Palette) Problem() string { return p.problem }

// Open shows an empty command line and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.problem = ""
	p.cursor = len(p.recall)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			return p.submit()
		case "tab":
			p.complete()
			return p, nil
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) submit() (Palette, tea.Cmd) {
	raw := strings.TrimSpace(p.input.Value())
	if raw == "" {
		p.close()
		return p, func() tea.Msg { return PaletteCancelMsg{} }
	}
	c, arg, err := ParseCommand(raw)
	if err != nil {
		p.problem = err.Error()
		return p, nil
	}
	p.remember(raw)
	p.close()
	return p, func() tea.Msg { return PaletteSubmitMsg{Name: c.Name, Arg: arg} }
}

func (p *Palette) close() {
	p.visible = false
	p.problem = ""
	p.input.Blur()
}

func (p *Palette) complete() {
	value := p.input.Value()
	if strings.Contains(strings.TrimLeft(value, " "), " ") {
		return
	}
	found := matches(value)
	if len(found) != 1 {
		return
	}
	next := found[0].Name
	if found[0].Arg != "" {
		next += " "
	}
	p.input.SetValue(next)
	p.input.CursorEnd()
}

func (p *Palette) remember(raw string) {
	if n := len(p.recall); n > 0 && p.recall[n-1] == raw {
		return
	}
	p.recall = append(p.recall, raw)
	if len(p.recall) > maxRecall {
		p.recall = p.recall[len(p.recall)-maxRecall:]
	}
}

func (p *Palette) step(delta int) {
	next := p.cursor + delta
	if next < 0 || next > len(p.recall) {
		return
	}
	p.cursor = next
	if next == len(p.recall) {
		p.input.SetValue("")
	} else {
		p.input.SetValue(p.recall[next])
	}
	p.input.CursorEnd()
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if p.problem != "" {
		sb.WriteString(theme.Alert.Render(p.problem) + "\n")
	}
	if found := matches(p.input.Value()); len(found) > 0 {
		sb.WriteString("\n")
		for _, c := range found {
			usage := c.Name
			if c.Arg != "" {
				usage += " <" + c.Arg + ">"
			}
			sb.WriteString(commandStyle.Render(fmt.Sprintf("  %-20s", usage)) + helpStyle.Render(c.Help) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
