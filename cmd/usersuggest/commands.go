package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/usersuggest/internal/cli"
	"github.com/bastiangx/usersuggest/internal/logger"
	"github.com/bastiangx/usersuggest/internal/tui"
	"github.com/bastiangx/usersuggest/pkg/config"
	"github.com/bastiangx/usersuggest/pkg/directory"
	"github.com/bastiangx/usersuggest/pkg/server"
	"github.com/bastiangx/usersuggest/pkg/suggest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// load sets up logging and reads the config, applying the usual priority.
func (g *Globals) load(w io.Writer) (*config.Config, error) {
	logger.Setup(w, g.Debug)

	cfg, path, err := config.LoadConfigWithPriority(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))
	return cfg, nil
}

// ClientFlags override the [client] config section.
type ClientFlags struct {
	BaseURL   string `name:"base-url" help:"Base URL of the suggestion API (user_suggest is appended)."`
	MinPrefix int    `name:"prmin" help:"Minimum prefix length before looking up suggestions."`
}

func (f ClientFlags) apply(c *config.ClientConfig) {
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.MinPrefix > 0 {
		c.MinPrefix = f.MinPrefix
	}
}

// newCoordinator builds the fetcher and coordinator described by the [client] section.
func newCoordinator(c config.ClientConfig) (*suggest.Coordinator, error) {
	opts := []suggest.FetcherOption{
		suggest.WithTimeout(c.Timeout.Duration),
		suggest.WithResultPath(c.ResultPath),
	}
	switch c.Accept {
	case "", "json":
	case "msgpack":
		opts = append(opts, suggest.WithMsgpack())
	default:
		return nil, fmt.Errorf("unsupported accept %q (use json or msgpack)", c.Accept)
	}

	fetcher, err := suggest.NewHTTPFetcher(c.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug("Client info:", "endpoint", fetcher.Endpoint(), "minPrefix", c.MinPrefix, "timeout", c.Timeout.Duration)

	return suggest.NewCoordinator(suggest.NewMemoryCache(), fetcher, suggest.WithMinPrefix(c.MinPrefix)), nil
}

// ServeCmd runs the dev user_suggest endpoint.
type ServeCmd struct {
	Listen string `help:"Address to listen on."`
	Users  string `help:"User list (.txt or .msgpack)." type:"path"`
	Limit  int    `help:"Maximum names per answer."`
}

func (c *ServeCmd) Run(g *Globals, ctx context.Context) error {
	cfg, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.Server.Listen = c.Listen
	}
	if c.Users != "" {
		cfg.Server.UsersFile = c.Users
	}
	if c.Limit > 0 {
		cfg.Server.Limit = c.Limit
	}

	dir := directory.New()
	if cfg.Server.UsersFile != "" {
		if _, err := dir.LoadFile(cfg.Server.UsersFile); err != nil {
			return err
		}
	} else {
		log.Warn("No users file specified, serving an empty directory...")
	}

	return server.NewServer(dir, cfg.Server).Start(ctx)
}

// TuiCmd opens the terminal widget. Without a terminal on stdout it falls back to line mode.
type TuiCmd struct {
	ClientFlags `embed:""`
}

func (c *TuiCmd) Run(g *Globals, ctx context.Context) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return (&CliCmd{ClientFlags: c.ClientFlags}).Run(g, ctx)
	}

	// the screen belongs to the widget; debug logs go to a file
	logOut := io.Discard
	if g.Debug {
		f, err := os.OpenFile(AppName+"-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	cfg, err := g.load(logOut)
	if err != nil {
		return err
	}
	c.apply(&cfg.Client)

	coord, err := newCoordinator(cfg.Client)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx, coord),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}

	st := coord.Stats()
	log.Debug("Session stats", "hits", st.Hits, "misses", st.Misses, "fetches", st.Fetches, "failures", st.Failures, "stale", st.Stale)
	return nil
}

// CliCmd is the line-mode input handler for testing and debugging.
type CliCmd struct {
	ClientFlags `embed:""`
}

func (c *CliCmd) Run(g *Globals, ctx context.Context) error {
	cfg, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	c.apply(&cfg.Client)

	coord, err := newCoordinator(cfg.Client)
	if err != nil {
		return err
	}
	return cli.NewInputHandler(coord, os.Stdin, os.Stdout, cfg.CLI.Prompt).Start(ctx)
}

// IndexCmd converts a text user list into the msgpack directory format.
type IndexCmd struct {
	Source string `arg:"" help:"Text file with one user name per line." type:"existingfile"`
	Target string `arg:"" help:"Output .msgpack file." type:"path"`
}

func (c *IndexCmd) Run(g *Globals) error {
	logger.Setup(os.Stderr, g.Debug)

	dir := directory.New()
	n, err := dir.LoadFile(c.Source)
	if err != nil {
		return err
	}
	if err := dir.Save(c.Target); err != nil {
		return err
	}
	log.Printf("Wrote %d names to %s", n, c.Target)
	return nil
}

// VersionCmd prints the version banner.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("[ usersuggest ] user name suggestions, cached per prefix")
	l.Print("", "version", Version)
	l.Print("use -h or --help to see available options")
	return nil
}
