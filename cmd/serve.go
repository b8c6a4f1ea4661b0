package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/lex-research/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(e.Catalog, e.Assembler, e.Answerer.Configured, e.Audit)
		return srv.Run(port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: config server.port)")
	rootCmd.AddCommand(serveCmd)
}
