package command

import (
	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/chat"
	"github.com/adamavenir/weft/internal/logging"
	"github.com/adamavenir/weft/internal/source"
)

// NewDemoCmd creates the demo command.
func NewDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic session",
		Long:  "Demo plays a built-in session exercising streaming, tools, history, and permissions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			// A small window so the demo backlog spills and the history
			// rule shows up immediately.
			env.cfg.History.Window = 30
			if len(env.cfg.Tools.AutoExpand) == 0 {
				env.autoExpand = func(name string) bool { return name == "edit" }
			}

			session, err := env.newSession("")
			if err != nil {
				return err
			}

			done := make(chan struct{})
			defer close(done)
			go source.RunDemo(session, done)

			return chat.Run(chat.Options{
				Session:    session,
				Config:     env.cfg,
				AutoExpand: env.autoExpand,
				Title:      "demo",
				Log:        logging.Component(env.log, "chat"),
			})
		},
	}
	return cmd
}
