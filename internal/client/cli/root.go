// Package cli wires the punch terminal client's commands.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"punch/internal/client/api"
	"punch/internal/client/identity"
	"punch/internal/client/storage"
	"punch/internal/client/waitlist"
	"punch/internal/config"
	"punch/internal/logging"
)

// env is built once per invocation in PersistentPreRunE.
type env struct {
	cfg      *config.ClientConfig
	logger   *zap.Logger
	store    *storage.Store
	chatAPI  *api.Client
	identity *identity.Service
	waitlist *waitlist.Submitter
}

type flags struct {
	apiURL  string
	siteURL string
	dataDir string
	debug   bool
}

// NewRootCommand returns the punch command tree and a release func that
// closes local storage and flushes the log. Call release after Execute
// whether or not it failed; cobra skips post-run hooks on errors.
func NewRootCommand() (*cobra.Command, func()) {
	root, e := newRoot()
	return root, e.close
}

func newRoot() (*cobra.Command, *env) {
	var (
		f flags
		e env
	)

	root := &cobra.Command{
		Use:   "punch",
		Short: "punch - your new favorite friend, in the terminal",
		Long: `Chat with Punch from your terminal.

Sign in once with "punch signin <your name>", then run "punch" or
"punch chat" to pick up where you left off.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd, f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, &e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.apiURL, "api-url", "", "chat backend base URL (env PUNCH_API_URL)")
	pf.StringVar(&f.siteURL, "site-url", "", "site base URL for the waitlist (env PUNCH_SITE_URL)")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory for local data and logs (env PUNCH_DATA_DIR)")
	pf.BoolVar(&f.debug, "debug", false, "debug logging")

	root.AddCommand(
		newSignInCommand(&e),
		newSignOutCommand(&e),
		newWhoAmICommand(&e),
		newChatCommand(&e),
		newClearCommand(&e),
		newWaitlistCommand(&e),
	)
	return root, &e
}

func (e *env) setup(cmd *cobra.Command, f flags) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if cmd.Flags().Changed("site-url") {
		cfg.SiteURL = f.siteURL
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	cfg.Debug = cfg.Debug || f.debug
	e.cfg = cfg

	logger, err := logging.NewFile(cfg.LogPath(), cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	e.logger = logger

	dsn, err := storage.FileDSN(cfg.DatabasePath())
	if err != nil {
		return err
	}
	store, err := storage.Open(cmd.Context(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open local storage: %w", err)
	}
	e.store = store

	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	e.chatAPI = api.New(cfg.APIURL, timeout)
	e.identity = identity.NewService(store, e.chatAPI, logger)
	e.waitlist = waitlist.NewSubmitter(api.New(cfg.SiteURL, timeout), store, logger)

	logger.Debug("client ready",
		zap.String("command", cmd.CommandPath()),
		zap.String("api_url", cfg.APIURL),
		zap.String("data_dir", cfg.DataDir))
	return nil
}

// close is safe to call more than once.
func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil && e.logger != nil {
			e.logger.Warn("close local storage failed", zap.Error(err))
		}
		e.store = nil
	}
	if e.logger != nil {
		_ = e.logger.Sync()
		e.logger = nil
	}
}
