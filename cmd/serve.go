package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/cloze/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve cloze generation, word lookup and history over HTTP until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.HTTP.Addr = addr
		}
		if a.cfg.Env == "production" || a.cfg.Env == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx := cmd.Context()
		cloze, err := a.clozeService(ctx, 0)
		if err != nil {
			return err
		}

		a.log.Info("starting cloze server", "provider", a.cfg.LLM.Provider, "db_driver", a.cfg.Database.Driver)

		router := server.NewRouter(server.RouterConfig{
			Cloze:       cloze,
			History:     a.historyService(),
			Dictionary:  a.dictionaryService(ctx),
			Log:         a.log,
			CORSOrigins: a.cfg.HTTP.Origins(),
		})

		return server.Serve(ctx, a.cfg.HTTP.Addr, router, server.Timeouts{
			Read:     a.cfg.HTTP.ReadTimeout,
			Write:    a.cfg.HTTP.WriteTimeout,
			Shutdown: a.cfg.HTTP.ShutdownTimeout,
		}, a.log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CLOZE_HTTP_ADDR)")
}
