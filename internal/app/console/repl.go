package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Prompter reads interactive input.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
}

const replHelp = `commands:
  #!<view> | go <view>   open a view
  <action> | do <action> run an action of the current view
  views                  list the views you may open
  refresh                reload the current view
  logout                 end the session
  quit                   leave the console
`

// RunInteractive reads commands until the input ends or the user quits. Whenever no user is
// loaded, the credentials are asked for first.
func (s *Shell) RunInteractive(ctx context.Context, p Prompter, out io.Writer) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if !s.Authenticated() {
			username, err := p.ReadLine("Username: ")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if username == "" {
				continue
			}
			password, err := p.ReadSecret("Password: ")
			if err != nil {
				return err
			}
			_ = s.Login(ctx, username, password) // failures are shown by the display
			continue
		}

		line, err := p.ReadLine(fmt.Sprintf("%s> ", s.Location()))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		// other failures were already shown by the display
		quit, err := s.execute(ctx, line, out)
		if errors.Is(err, ErrUnknownAction) {
			_, _ = fmt.Fprintf(out, "unknown command %q, type help\n", line)
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) execute(ctx context.Context, line string, out io.Writer) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch {
	case cmd == "":
		return false, nil
	case strings.HasPrefix(cmd, "#"):
		return false, s.Navigate(ctx, cmd)
	case cmd == "go":
		return false, s.Navigate(ctx, arg)
	case cmd == "do":
		return false, s.Do(ctx, arg)
	case cmd == "refresh":
		return false, s.Navigate(ctx, string(s.Location()))
	case cmd == "views":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, entry := range s.Views() {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", entry.Key, entry.Title)
		}
		return false, w.Flush()
	case cmd == "help":
		_, _ = io.WriteString(out, replHelp)
		return false, nil
	case cmd == "logout":
		return false, s.Logout(ctx)
	case cmd == "quit" || cmd == "exit":
		return true, nil
	default:
		return false, s.Do(ctx, cmd)
	}
}
