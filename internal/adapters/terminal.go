package adapters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/h44z/sms-portal/internal/app/console"
)

// textAreaEnd terminates the input of a multi-line field.
const textAreaEnd = "."

// Terminal renders the console on a text terminal and reads form input line by line.
// Ctrl-D (end of input) cancels a form.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 if the input is not a terminal

	mu     sync.Mutex
	chrome console.Chrome
	active console.LocationKey

	brand   *color.Color
	nav     *color.Color
	title   *color.Color
	faint   *color.Color
	success *color.Color
	failure *color.Color
	info    *color.Color
}

func NewTerminal(in io.Reader, out io.Writer, useColor bool) *Terminal {
	t := &Terminal{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,

		brand:   color.New(color.FgCyan, color.Bold),
		nav:     color.New(color.FgCyan, color.Underline),
		title:   color.New(color.Bold),
		faint:   color.New(color.Faint),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		info:    color.New(color.FgYellow),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	if !useColor {
		for _, c := range []*color.Color{t.brand, t.nav, t.title, t.faint, t.success, t.failure, t.info} {
			c.DisableColor()
		}
	}
	return t
}

// region display

func (t *Terminal) ShowLogin(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chrome = console.Chrome{}
	t.active = ""
	if reason != "" {
		_, _ = t.info.Fprintln(t.out, reason)
	}
	_, _ = t.title.Fprintln(t.out, "Please log in.")
}

func (t *Terminal) MountChrome(chrome console.Chrome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chrome = chrome
	name := chrome.Name
	if name == "" {
		name = chrome.Username
	}
	_, _ = t.brand.Fprintf(t.out, "%s", chrome.Brand)
	_, _ = fmt.Fprintf(t.out, "  logged in as %s\n", name)
}

func (t *Terminal) ClearActive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = ""
}

func (t *Terminal) SetActive(key console.LocationKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = key
}

func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]string, 0, len(t.chrome.Nav))
	for _, entry := range t.chrome.Nav {
		if entry.Key == t.active {
			entries = append(entries, t.nav.Sprint(entry.Key.String()))
		} else {
			entries = append(entries, entry.Key.String())
		}
	}
	_, _ = fmt.Fprintf(t.out, "\n%s\n", strings.Join(entries, "  "))
	_, _ = t.title.Fprintf(t.out, "== %s ==\n", title)
}

func (t *Terminal) MountPage(page console.Fragment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(page.Controls) == 0 {
		return
	}
	names := make([]string, len(page.Controls))
	for i, c := range page.Controls {
		names[i] = c.Name
	}
	_, _ = t.faint.Fprintf(t.out, "actions: %s\n", strings.Join(names, ", "))
}

func (t *Terminal) Mount(slot string, c console.Component) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch v := c.(type) {
	case console.Table:
		_, _ = t.faint.Fprintf(t.out, "[%s]\n", slot)
		t.writeTable(v)
	case console.Options:
		// select options are only shown when a form asks for them
	case console.Details:
		_, _ = t.title.Fprintln(t.out, v.Title)
		w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
		for _, item := range v.Items {
			_, _ = fmt.Fprintf(w, "  %s:\t%s\n", item.Label, item.Value)
		}
		_ = w.Flush()
	case console.Text:
		_, _ = fmt.Fprintln(t.out, v.Text)
	}
}

func (t *Terminal) writeTable(table console.Table) {
	if len(table.Rows) == 0 {
		_, _ = t.faint.Fprintln(t.out, table.Empty)
		return
	}

	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "\n", " ")
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

func (t *Terminal) SetBusy(control string, busy bool) {
	if !busy {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.faint.Fprintf(t.out, "%s ...\n", control)
}

func (t *Terminal) Notify(n console.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch n.Level {
	case console.NotifySuccess:
		_, _ = t.success.Fprintln(t.out, n.Message)
	case console.NotifyError:
		_, _ = t.failure.Fprintln(t.out, n.Message)
	default:
		_, _ = t.info.Fprintln(t.out, n.Message)
	}
}

// endregion display

// region input

// ReadLine prints the prompt and returns the entered line without surrounding whitespace.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads a line without echo if the input is a terminal.
func (t *Terminal) ReadSecret(prompt string) (string, error) {
	if t.fd < 0 {
		return t.ReadLine(prompt)
	}

	_, _ = fmt.Fprint(t.out, prompt)
	secret, err := term.ReadPassword(t.fd)
	_, _ = fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Collect asks for every field of the form. Required fields are asked again until they are filled.
func (t *Terminal) Collect(_ context.Context, form console.FormSpec, options map[string]console.Options) (
	console.Values,
	error,
) {
	_, _ = t.title.Fprintln(t.out, form.Title)

	values := console.Values{}
	for _, field := range form.Fields {
		for {
			raw, err := t.readField(field, options[field.Source])
			if errors.Is(err, io.EOF) {
				return nil, console.ErrFormCancelled
			}
			if err != nil {
				return nil, err
			}
			if raw == "" {
				raw = field.Default
			}
			if raw == "" && field.Required {
				_, _ = t.failure.Fprintf(t.out, "%s is required.\n", field.Label)
				continue
			}

			if field.Kind == console.FieldMultiSelect {
				for _, part := range strings.Split(raw, ",") {
					if part = strings.TrimSpace(part); part != "" {
						values.Add(field.Name, part)
					}
				}
			} else {
				values.Set(field.Name, raw)
			}
			break
		}
	}

	return values, nil
}

func (t *Terminal) readField(field console.FormField, opts console.Options) (string, error) {
	prompt := field.Label
	if field.Default != "" && field.Kind != console.FieldSecret && field.Kind != console.FieldTextArea {
		prompt += " [" + field.Default + "]"
	}

	switch field.Kind {
	case console.FieldSecret:
		return t.ReadSecret(prompt + ": ")
	case console.FieldBool:
		answer, err := t.ReadLine(prompt + " (y/n): ")
		if err != nil || answer == "" {
			return answer, err
		}
		return strconv.FormatBool(strings.HasPrefix(strings.ToLower(answer), "y")), nil
	case console.FieldSelect, console.FieldMultiSelect:
		t.writeChoices(field, opts)
		return t.ReadLine(prompt + ": ")
	case console.FieldTextArea:
		return t.readTextArea(prompt, field.Default)
	default:
		return t.ReadLine(prompt + ": ")
	}
}

func (t *Terminal) writeChoices(field console.FormField, opts console.Options) {
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	for _, choice := range field.Choices {
		if choice != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", choice)
		}
	}
	for _, item := range opts.Items {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", item.Value, item.Label)
	}
	_ = w.Flush()
	if field.Kind == console.FieldMultiSelect {
		_, _ = t.faint.Fprintln(t.out, "  (separate multiple values with a comma)")
	}
}

// readTextArea reads lines until a line containing only a dot. An empty first line keeps the default.
func (t *Terminal) readTextArea(prompt, def string) (string, error) {
	if def != "" {
		_, _ = t.faint.Fprintf(t.out, "current value:\n%s\n", def)
	}
	_, _ = fmt.Fprintf(t.out, "%s (end with a line containing only %q):\n", prompt, textAreaEnd)

	var lines []string
	for {
		line, err := t.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == textAreaEnd {
			break
		}
		if len(lines) == 0 && line == "" {
			return "", nil
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}

// endregion input
