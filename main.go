package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "brilliora",
		Short:   "Brilliora storefront API",
		Version: Version,
	}

	serve := serveCmd()
	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(seedCmd())
	// serve is the default when no subcommand is given
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
