package cmd

import (
	"fmt"
	"os"

	"github.com/besnikbelegu/rustbase/cmd/query"
	"github.com/besnikbelegu/rustbase/cmd/serve"
	"github.com/besnikbelegu/rustbase/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rustbase",
		Short: "NoSQL key-value database with a JSON-like query language",
		Long: fmt.Sprintf(`rustbase (v%s)

A NoSQL key-value database written in Go, queried with a small
JSON-like query language (insert, get, update, delete, list).`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rustbase",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rustbase v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(query.QueryCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
