package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/variant/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const replHelp = `(type,value)      encode a literal
<hex>             decode a container
inspect <arg>     show header fields
put <key> <arg>   store a literal or container
get <key>         fetch and decode
del <key>         remove a key
types             list registered types`

const historySize = 12

func (a *app) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive encoder, decoder and store shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			sh := &shell{app: a, store: s, ctx: cmd.Context()}
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return sh.runLines(os.Stdin, cmd.OutOrStdout())
			}
			_, err = tea.NewProgram(newReplModel(sh)).Run()
			return err
		},
	}
}

// shell evaluates one line at a time; the TUI and the plain line loop
// share it.
type shell struct {
	app   *app
	store store.Store
	ctx   context.Context
}

func (sh *shell) eval(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if strings.HasPrefix(line, "(") {
		ct, err := sh.app.codec.In(line)
		if err != nil {
			return "", err
		}
		return ct.String(), nil
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "help", "?":
		return replHelp, nil

	case "types":
		var b strings.Builder
		for _, t := range sh.app.reg.Types() {
			fmt.Fprintf(&b, "%-6d %-8s %s\n", t.ID, t.Name, t.Class())
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "inspect":
		ct, err := sh.app.containerArg(rest)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		if err := sh.app.describe(&b, ct); err != nil {
			return "", err
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "put":
		key, arg, ok := strings.Cut(rest, " ")
		if !ok {
			return "", fmt.Errorf("usage: put <key> <literal|hex>")
		}
		ct, err := sh.app.containerArg(arg)
		if err != nil {
			return "", err
		}
		if err := sh.store.Put(sh.ctx, key, ct); err != nil {
			return "", err
		}
		return fmt.Sprintf("stored %s (%d bytes)", key, len(ct)), nil

	case "get":
		ct, err := sh.store.Get(sh.ctx, rest)
		if err != nil {
			return "", err
		}
		return sh.app.codec.Out(ct)

	case "del", "delete":
		if err := sh.store.Delete(sh.ctx, rest); err != nil {
			return "", err
		}
		return "deleted " + rest, nil
	}

	ct, err := parseHex(line)
	if err != nil {
		return "", fmt.Errorf("unknown command %q (try help)", verb)
	}
	return sh.app.codec.Out(ct)
}

func (sh *shell) runLines(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out, err := sh.eval(sc.Text())
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
	return sc.Err()
}

type entry struct {
	err    error
	input  string
	output string
}

type replModel struct {
	sh      *shell
	input   textinput.Model
	history []entry
}

func newReplModel(sh *shell) *replModel {
	ti := textinput.New()
	ti.Placeholder = "(int4,42)"
	ti.Prompt = promptStyle.Render("variant> ")
	ti.Width = 60
	ti.Focus()
	return &replModel{sh: sh, input: ti}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := m.input.Value()
			if strings.TrimSpace(line) == "quit" || strings.TrimSpace(line) == "exit" {
				return m, tea.Quit
			}
			out, err := m.sh.eval(line)
			if line != "" {
				m.history = append(m.history, entry{input: line, output: out, err: err})
				if len(m.history) > historySize {
					m.history = m.history[len(m.history)-historySize:]
				}
			}
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Variant"))
	b.WriteString(" ")
	b.WriteString(m.sh.app.cfg.Store.Backend)
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render("> " + e.input))
		b.WriteString("\n")
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
		} else if e.output != "" {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • help commands • esc quit"))
	return b.String()
}
