package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	sentrygo "github.com/getsentry/sentry-go"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"contactbook/contact"
	"contactbook/httpserver"
	"contactbook/metrics"
	"contactbook/pkg/config"
	"contactbook/pkg/logger"
	"contactbook/pkg/sentry"
	"contactbook/pkg/storage"
	"contactbook/tui"
)

const shutdownTimeout = 10 * time.Second

// CLI is the top-level command structure for contacts.
type CLI struct {
	Backend string `help:"Storage backend (file, sql, dynamodb). Overrides STORE_BACKEND." placeholder:"NAME"`
	File    string `help:"Contacts file for the file backend. Overrides STORE_FILE_PATH." type:"path" placeholder:"PATH"`

	UI     UICmd     `cmd:"" default:"1" help:"Open the interactive contact screen."`
	List   ListCmd   `cmd:"" help:"Print the stored contacts."`
	Add    AddCmd    `cmd:"" help:"Validate and store a contact."`
	Remove RemoveCmd `cmd:"" help:"Delete the contact at a list position."`
	Serve  ServeCmd  `cmd:"" help:"Serve the JSON API."`
}

// app carries what every command needs.
type app struct {
	cfg *config.Config
	out io.Writer
}

func (c *CLI) newApp(out io.Writer) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.Backend != "" {
		cfg.Store.Backend = c.Backend
	}
	if c.File != "" {
		cfg.Store.FilePath = c.File
	}
	return &app{cfg: cfg, out: out}, nil
}

// service opens the configured repository and wraps it in a Usecase. The
// returned closer releases the storage connection.
func (a *app) service(ctx context.Context, l *zap.SugaredLogger, m *metrics.Metrics) (*contact.Usecase, storage.Closer, error) {
	repo, closeFn, err := storage.Open(ctx, a.cfg, l)
	if err != nil {
		return nil, nil, err
	}
	if m != nil {
		repo = m.Repository(repo)
	}
	return contact.NewUsecase(repo, contact.WithLogger(l)), closeFn, nil
}

// UICmd runs the interactive screen.
type UICmd struct{}

func (u *UICmd) Run(a *app) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("ui: requires a terminal (TTY); use list, add or remove instead")
	}

	l, err := logger.File(a.cfg.LogFile, a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer func() { _ = l.Sync() }()

	svc, closeFn, err := a.service(context.Background(), l, nil)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer closeFn()

	_, err = tea.NewProgram(tui.NewModel(svc), tea.WithAltScreen()).Run()
	return err
}

// ListCmd prints contacts with their 1-based position.
type ListCmd struct{}

func (l *ListCmd) Run(a *app) error {
	log, err := logger.New(a.cfg.AppEnv, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	svc, closeFn, err := a.service(context.Background(), log, nil)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer closeFn()

	contacts, err := svc.LoadContacts(context.Background())
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return printContacts(a.out, contacts)
}

// AddCmd stores one contact.
type AddCmd struct {
	Name  string `arg:"" help:"Contact name (letters and spaces)."`
	Email string `arg:"" help:"Contact email."`
}

func (c *AddCmd) Run(a *app) error {
	log, err := logger.New(a.cfg.AppEnv, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, closeFn, err := a.service(ctx, log, nil)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer closeFn()

	if _, err := svc.LoadContacts(ctx); err != nil {
		log.Warnw("continuing without stored contacts", "error", err)
	}

	stored, err := svc.AddContact(ctx, contact.Contact{Name: c.Name, Email: c.Email})
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, err = fmt.Fprintf(a.out, "Added %s <%s>\n", stored.Name, stored.Email)
	return err
}

// RemoveCmd deletes by the position shown by list.
type RemoveCmd struct {
	Position int `arg:"" help:"Position as shown by list, starting at 1."`
}

func (c *RemoveCmd) Run(a *app) error {
	if c.Position < 1 {
		return fmt.Errorf("remove: position must be 1 or greater")
	}

	log, err := logger.New(a.cfg.AppEnv, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, closeFn, err := a.service(ctx, log, nil)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	defer closeFn()

	contacts, err := svc.LoadContacts(ctx)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if err := svc.RemoveContact(ctx, c.Position-1); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	removed := contacts[c.Position-1]
	_, err = fmt.Fprintf(a.out, "Removed %s <%s>\n", removed.Name, removed.Email)
	return err
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Port int `help:"Listen port. Overrides PORT."`
}

func (s *ServeCmd) Run(a *app) error {
	if s.Port != 0 {
		a.cfg.Port = s.Port
	}

	log, err := logger.New(a.cfg.AppEnv, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              a.cfg.SentryDSN,
		Environment:      a.cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("serve: init sentry: %w", err)
	}
	defer sentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	svc, closeFn, err := a.service(ctx, log, m)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer closeFn()

	if _, err := svc.LoadContacts(ctx); err != nil {
		log.Warnw("starting with an empty contact list", "error", err)
	}

	server, err := httpserver.New(
		httpserver.WithConfig(a.cfg),
		httpserver.WithLogger(log),
		httpserver.WithContactService(svc),
		httpserver.WithMetrics(m, reg),
	)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server started", "addr", server.Addr, "backend", a.cfg.Store.Backend)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Infow("shutting down")
	return server.Shutdown(shutdownCtx)
}

func printContacts(w io.Writer, contacts []contact.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No contacts.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, c.Name, c.Email)
	}
	return tw.Flush()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("Keep a validated list of names and emails."),
		kong.UsageOnError(),
	)

	a, err := cli.newApp(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(a); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
