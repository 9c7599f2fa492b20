package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/h44z/sms-portal/internal"
	"github.com/h44z/sms-portal/internal/adapters"
	"github.com/h44z/sms-portal/internal/app/console"
	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

const (
	configFlag  = "config"
	profileFlag = "profile"
	limitFlag   = "limit"
)

var (
	backend *consoleBackend
	logFile io.WriteCloser
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    configFlag,
		Aliases: []string{"c"},
		Value:   "config.yml",
		Usage:   "Path of the YAML configuration file.",
		EnvVars: []string{"SMS_PORTAL_CONFIG"},
	},
	&cli.StringFlag{
		Name:  profileFlag,
		Usage: "Console profile, overrides session.profile of the configuration.",
	},
}

var commands = []*cli.Command{
	{
		Name:      "shell",
		Aliases:   []string{"s"},
		Usage:     "open the interactive console",
		ArgsUsage: "[view]",
		Action:    runShell,
	},
	{
		Name:  "logout",
		Usage: "discard the stored session token",
		Action: func(c *cli.Context) error {
			if backend.session.Username() == "" {
				username, err := backend.activity.LastLogin(c.Context, backend.session.Profile())
				if err != nil {
					slog.Warn("failed to look up last login", "error", err)
				}
				backend.session.SetUsername(username)
			}

			if err := backend.session.Logout(c.Context); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			_, _ = fmt.Fprintln(c.App.Writer, "Logged out of profile", backend.session.Profile())
			return nil
		},
	},
	{
		Name:  "whoami",
		Usage: "show the user owning the stored session token",
		Action: gatewayAction(func(c *cli.Context) error {
			info, err := backend.gateway.UserInfo(c.Context)
			if err != nil {
				return fmt.Errorf("failed to load user info: %w", err)
			}

			w := c.App.Writer
			_, _ = fmt.Fprintf(w, "%s (%s)\n", info.DisplayName(), info.Username)
			if info.Email != "" {
				_, _ = fmt.Fprintln(w, info.Email)
			}
			for _, p := range info.Permissions {
				_, _ = fmt.Fprintf(w, " - %s\n", p)
			}
			return nil
		}),
	},
	{
		Name:  "status",
		Usage: "show the status of the gateway services",
		Action: gatewayAction(func(c *cli.Context) error {
			status, err := backend.gateway.ServiceStatus(c.Context)
			if err != nil {
				return fmt.Errorf("failed to load service status: %w", err)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PROGRAM\tSTATUS\tOK")
			for _, s := range status {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\n", s.Program, s.Status, s.Ok)
			}
			return tw.Flush()
		}),
	},
	{
		Name:  "activity",
		Usage: "list the recorded activity of the console profile",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  limitFlag,
				Value: 20,
				Usage: "Maximum number of entries.",
			},
		},
		Action: func(c *cli.Context) error {
			entries, err := backend.activity.GetRecent(c.Context, backend.session.Profile(), c.Int(limitFlag))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Username, e.Message)
			}
			return tw.Flush()
		},
	},
}

var errSessionExpired = errors.New("session expired, log in again")

// gatewayAction runs commands that need a stored session token.
// A token rejected by the gateway is discarded so the next shell start asks for a login.
func gatewayAction(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if _, ok := backend.session.Token(c.Context); !ok {
			return errors.New("not logged in, run the shell to log in")
		}

		err := action(c)
		if domain.IsUnauthorized(err) {
			if expireErr := backend.session.Expire(c.Context); expireErr != nil {
				slog.Error("failed to discard rejected session token", "error", expireErr)
			}
			return errSessionExpired
		}
		return err
	}
}

func runShell(c *cli.Context) error {
	cfg := backend.cfg
	terminal := adapters.NewTerminal(os.Stdin, os.Stdout, cfg.Console.Color)

	var opts []console.ShellOption
	if backend.metrics != nil {
		opts = append(opts, console.WithRenderObserver(backend.metrics))
	}

	shell, err := console.NewShell(cfg, backend.session, backend.gateway, backend.bus, terminal, terminal, opts...)
	if err != nil {
		return fmt.Errorf("failed to set up console: %w", err)
	}

	backend.StartBackgroundJobs(c.Context)

	if err := shell.Start(c.Context, strings.TrimSpace(c.Args().First())); err != nil {
		return err
	}

	return shell.RunInteractive(c.Context, terminal, os.Stdout)
}

func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	app := cli.NewApp()
	app.Name = "sms-console"
	app.Usage = "SMS gateway admin console"
	app.EnableBashCompletion = true
	app.Commands = commands
	app.Flags = globalFlags
	app.DefaultCommand = "shell"
	app.Before = func(c *cli.Context) error {
		cfg, err := config.GetConfigFromFile(c.String(configFlag))
		if err != nil {
			return err
		}
		if profile := strings.TrimSpace(c.String(profileFlag)); profile != "" {
			cfg.Session.Profile = profile
		}

		// stdout belongs to the console UI
		logFile, err = internal.OpenLogFile(cfg.Advanced.LogFile)
		if err != nil {
			return err
		}
		internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson, logFile)
		cfg.LogStartupValues()

		backend, err = newConsoleBackend(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("console backend failed to initialize: %w", err)
		}
		return nil
	}
	app.After = func(*cli.Context) error {
		if backend != nil {
			backend.Close()
		}
		if logFile != nil {
			internal.LogClose(logFile)
		}
		return nil
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
