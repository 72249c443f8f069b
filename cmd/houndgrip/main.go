package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"houndgrip/internal/client"
	"houndgrip/internal/config"
	"houndgrip/internal/eventbus"
	"houndgrip/internal/query"
	"houndgrip/internal/results"
	"houndgrip/internal/ui"
)

// Version is set at build time
var Version = "dev"

func main() {
	app := &cli.App{
		Name:                   "houndgrip",
		Usage:                  "Search a hound server from the terminal",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Hound server URL (overrides config and " + config.EnvServer + ")",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file path (default: houndgrip.log in the config directory)",
			},
			&cli.StringFlag{
				Name:  "url-query",
				Usage: "Start with a shareable query string, e.g. '?q=foo&i=fosho'",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Interactive search (default)",
				Action: runTUI,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search once and print the results",
				ArgsUsage: "PATTERN",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "ignore-case",
						Aliases: []string{"i"},
						Usage:   "Case-insensitive search",
					},
					&cli.StringFlag{
						Name:    "files",
						Aliases: []string{"f"},
						Usage:   "Only search file paths matching this regexp",
					},
					&cli.StringFlag{
						Name:    "exclude-files",
						Aliases: []string{"x"},
						Usage:   "Skip file paths matching this regexp",
					},
					&cli.StringFlag{
						Name:    "repos",
						Aliases: []string{"r"},
						Usage:   "Comma separated repositories to search (default: all)",
					},
					&cli.StringFlag{
						Name:  "filter-include",
						Usage: "Keep only results whose path matches this regexp",
					},
					&cli.StringFlag{
						Name:  "filter-exclude",
						Usage: "Drop results whose path matches this regexp",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Load every matching file, not just the first page per repository",
					},
					&cli.BoolFlag{
						Name:    "links",
						Aliases: []string{"l"},
						Usage:   "Print a browse link for each file",
					},
				},
				Action: runSearch,
			},
			{
				Name:   "repos",
				Usage:  "List the repositories the server indexes",
				Action: runRepos,
			},
			{
				Name:  "config",
				Usage: "Show the config file location, writing defaults if it does not exist",
				Action: func(c *cli.Context) error {
					svc := config.NewConfigService(c.String("config"))
					if _, err := os.Stat(svc.Path()); errors.Is(err, os.ErrNotExist) {
						if err := svc.Save(config.DefaultConfig()); err != nil {
							return cli.Exit(err.Error(), 1)
						}
						fmt.Fprintf(c.App.Writer, "wrote defaults to %s\n", svc.Path())
						return nil
					}
					fmt.Fprintln(c.App.Writer, svc.Path())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is what every command needs: config, a client for the server and the results model
type session struct {
	cfg       *config.Config
	configSvc config.ConfigService
	prefs     *config.Preferences
	bus       eventbus.EventBus
	client    *client.Client
	logFile   *os.File
}

func newSession(c *cli.Context) (*session, error) {
	s := &session{bus: eventbus.New()}

	// Set up logging
	logPath := c.String("log")
	if logPath == "" {
		logPath = filepath.Join(config.Dir(), "houndgrip.log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		s.logFile = logFile
		log.SetOutput(logFile)
	}

	s.configSvc = config.NewConfigServiceWithBus(c.String("config"), s.bus)
	s.cfg, err = s.configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return nil, cli.Exit(fmt.Sprintf("config %s: %v", s.configSvc.Path(), err), 2)
	}
	if server := c.String("server"); server != "" {
		s.cfg.Server = server
	}
	s.prefs = config.NewPreferences(s.cfg.Preferences)

	s.client, err = client.New(s.cfg.Server,
		client.WithTimeout(s.cfg.RequestTimeout()),
		client.WithUserAgent("houndgrip/"+Version))
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	log.Printf("Using server %s", s.client.BaseURL())
	return s, nil
}

func (s *session) Close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runTUI(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initial := query.FromQueryString(c.String("url-query"))
	res := results.New(s.client, s.bus,
		results.WithPreferences(s.prefs),
		results.WithParamsSource(func() query.Params { return initial }))

	model := ui.NewModel(ctx, res, s.cfg, s.prefs, initial)
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.SetProgram(p)

	stop := ui.Forward(s.bus, p.Send)
	defer stop()

	go func() {
		err := s.configSvc.Watch(ctx, s.prefs, func(cfg *config.Config) {
			log.Printf("Preferences now ignore_case=%t auto_hide_advanced=%t",
				cfg.Preferences.IgnoreCase, cfg.Preferences.AutoHideAdvanced)
		})
		if err != nil {
			log.Printf("Config watch stopped: %v", err)
		}
	}()

	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		return cli.Exit(fmt.Sprintf("Error running program: %v", err), 1)
	}
	log.Printf("UI exited normally")
	return nil
}

func runRepos(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	res := results.New(s.client, s.bus)
	if err := res.LoadRepos(ctx); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ids := res.RepoIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return strings.ToLower(ids[i]) < strings.ToLower(ids[j])
	})
	for _, id := range ids {
		fmt.Fprintf(c.App.Writer, "%-30s %s\n", id, res.RepoDisplayName(id))
	}
	return nil
}
