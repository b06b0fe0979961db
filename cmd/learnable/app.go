package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	app "github.com/kode4food/learnable"
	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/config"
	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/internal/session"
	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	learnable struct {
		cfg       *config.Config
		fs        afero.Fs
		in        *bufio.Reader
		out       io.Writer
		store     store.Store
		ownsStore bool
		session   *session.Store
		client    *backend.Client
		flags     globalFlags
	}

	globalFlags struct {
		configFile string
		envFile    string
		logLevel   string
	}
)

var (
	ErrLoadConfig = errors.New("failed to load configuration")
	ErrOpenStore  = errors.New("failed to open session store")
	ErrReadFile   = errors.New("failed to read file")
)

const msgLoginRequired = "Your session has expired. " +
	"Please run `learnable login` to sign in again."

func newApp(fs afero.Fs, in io.Reader, out io.Writer) *learnable {
	return &learnable{
		cfg: config.NewDefaultConfig(),
		fs:  fs,
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (a *learnable) setup(cmd *cobra.Command, _ []string) error {
	if err := a.loadConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	a.setupLogging()
	return a.openStore(cmd.Context())
}

func (a *learnable) loadConfig() error {
	if err := config.LoadDotEnv(a.flags.envFile); err != nil {
		return err
	}
	if a.flags.configFile != "" {
		if err := a.cfg.LoadFromFile(a.flags.configFile); err != nil {
			return err
		}
	}
	if err := a.cfg.LoadFromEnv(); err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		a.cfg.LogLevel = a.flags.logLevel
	}
	return a.cfg.Validate()
}

func (a *learnable) setupLogging() {
	level, ok := log.Levels[a.cfg.LogLevel]
	if !ok {
		level = log.Levels[config.DefaultLogLevel]
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)

	slog.Debug("Configuration loaded",
		slog.String("base_url", a.cfg.BaseURL),
		slog.String("store_prefix", a.cfg.StorePrefix),
		slog.String("log_level", a.cfg.LogLevel))
}

func (a *learnable) openStore(ctx context.Context) error {
	if a.store == nil {
		s, err := store.Open(ctx, a.cfg.StoreURL, a.cfg.StorePrefix)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOpenStore, err)
		}
		a.store = s
		a.ownsStore = true
	}

	a.session = session.New(a.store)
	gw := gateway.New(a.cfg.BaseURL, a.session,
		gateway.WithTimeout(a.cfg.RequestTimeout),
		gateway.WithLoginRequired(func(context.Context) {
			a.println(msgLoginRequired)
		}),
	)
	a.client = backend.New(gw, a.session)
	return nil
}

func (a *learnable) close(*cobra.Command, []string) error {
	if !a.ownsStore || a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *learnable) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *learnable) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// prompt asks for a line of input. End of input yields an empty answer
func (a *learnable) prompt(label string) string {
	a.printf("%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

func (a *learnable) confirm(question string) wizard.ConfirmFunc {
	return func(context.Context) bool {
		answer := strings.ToLower(a.prompt(question + " [y/N]"))
		return answer == "y" || answer == "yes"
	}
}

func (a *learnable) readFile(path string) (*api.File, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = api.ContentOctets
	}
	return &api.File{
		Name:        filepath.Base(path),
		ContentType: ct,
		Data:        data,
	}, nil
}
