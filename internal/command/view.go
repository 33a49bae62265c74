package command

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/chat"
	"github.com/adamavenir/weft/internal/config"
	"github.com/adamavenir/weft/internal/logging"
	"github.com/adamavenir/weft/internal/render"
	"github.com/adamavenir/weft/internal/source"
	"github.com/adamavenir/weft/internal/spool"
)

// NewViewCmd creates the view command.
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <stream.jsonl>",
		Short: "View a session stream",
		Long:  "View replays a recorded session stream, or follows one as it is written.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")
			delayMS, _ := cmd.Flags().GetInt("delay")
			spoolPath, _ := cmd.Flags().GetString("spool")

			env, err := setupEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			session, err := env.newSession(spoolPath)
			if err != nil {
				return err
			}

			player := source.NewPlayer(session, args[0],
				time.Duration(delayMS)*time.Millisecond, follow,
				logging.Component(env.log, "replay"))
			if err := player.Start(); err != nil {
				_ = session.Close()
				return err
			}
			defer func() { _ = player.Close() }()

			return chat.Run(chat.Options{
				Session:    session,
				Config:     env.cfg,
				AutoExpand: env.autoExpand,
				Errors:     player.Errors(),
				Title:      args[0],
				Log:        logging.Component(env.log, "chat"),
			})
		},
	}

	cmd.Flags().Bool("follow", false, "keep reading as the stream grows")
	cmd.Flags().Int("delay", 0, "milliseconds between events without timestamps")
	cmd.Flags().String("spool", "", "history spool database (default in-memory)")

	return cmd
}

// viewEnv bundles the config, logger, and matcher every viewer command
// sets up before building its session.
type viewEnv struct {
	cfg        config.Config
	log        *logrus.Logger
	logClose   io.Closer
	autoExpand func(string) bool
}

func (e *viewEnv) close() {
	if e.logClose != nil {
		_ = e.logClose.Close()
	}
}

func (e *viewEnv) newSession(spoolPath string) (*source.Session, error) {
	store, err := spool.Open(spoolPath)
	if err != nil {
		return nil, err
	}
	return source.NewSession(store, e.cfg.History.Window, e.cfg.History.LoadStep,
		logging.Component(e.log, "session")), nil
}

// setupEnv loads config with flag overrides and opens the log.
func setupEnv(cmd *cobra.Command) (*viewEnv, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
		if !render.KnownTheme(theme) {
			return nil, fmt.Errorf("unknown theme %q", theme)
		}
		cfg.Theme = theme
	}
	if file, _ := cmd.Flags().GetString("log-file"); file != "" {
		cfg.Log.File = file
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	autoExpand, err := cfg.AutoExpandMatcher()
	if err != nil {
		return nil, err
	}

	log, logClose, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &viewEnv{
		cfg:        cfg,
		log:        log,
		logClose:   logClose,
		autoExpand: autoExpand,
	}, nil
}
