package console

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/sms-portal/internal/app/gateway"
)

type scriptedPrompter struct {
	lines   []string
	prompts []string
}

func (p *scriptedPrompter) ReadLine(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptedPrompter) ReadSecret(prompt string) (string, error) {
	return p.ReadLine(prompt)
}

func TestShell_RunInteractive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.shell.Start(ctx, "#!campaign"))

	prompter := &scriptedPrompter{lines: []string{
		"alice", "secret", // login
		"views",
		"#!files",
		"bogus",
		"go reports",
		"quit",
		"never read",
	}}
	out := &bytes.Buffer{}

	require.NoError(t, env.shell.RunInteractive(ctx, prompter, out))

	assert.Equal(t, []string{
		"Username: ", "Password: ",
		"#!campaign> ", "#!campaign> ", "#!files> ", "#!files> ", "#!reports> ",
	}, prompter.prompts)
	assert.Equal(t, []string{"never read"}, prompter.lines)
	assert.Equal(t, []string{"campaign", "files", "reports"}, env.display.pages)
	assert.Equal(t, 1, env.gw.count(gateway.PathAuth))
	assert.Contains(t, out.String(), "services")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestShell_RunInteractiveEndOfInput(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.shell.Start(context.Background(), ""))

	prompter := &scriptedPrompter{}
	require.NoError(t, env.shell.RunInteractive(context.Background(), prompter, io.Discard))
	assert.Equal(t, []string{"Username: "}, prompter.prompts)
}
