package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/aretw0/draftwizard/internal/cli"
	"github.com/aretw0/draftwizard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the draft wizard HTTP server",
	Long: `Starts the draft wizard API. Open sessions autosave on edit and on the backstop
interval, and are flushed to the store when the server stops.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, wiz := setup(cmd)
		defer wiz.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		tui.PrintBanner(os.Stdout)

		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			fmt.Printf("Error listening on %s: %v\n", cfg.HTTPAddr, err)
			os.Exit(1)
		}
		fmt.Printf("Serving drafts from the %s store on %s\n", cfg.Store, ln.Addr())

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := cli.Serve(ctx, wiz, ln, logger); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Printf("Stopped on signal: %v\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides DRAFTWIZ_HTTP_ADDR)")
}
