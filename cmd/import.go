package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/view"
)

func importCmd() *cobra.Command {
	var target string

	command := cobra.Command{
		Use:   "import FILE",
		Short: "Load newline-delimited JSON nodes into the offline store",
		Long: `import loads one JSON node per line into the offline store, read by
the sqlite source. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := view.Resolve(config.NewAliases(), cfg.SpanLens, target)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			path := cfg.SpanLens.Source.DBPath
			if path == "" {
				path = config.AppDBFile
			}
			store, err := dao.OpenSQLiteStore(path, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), rid, r)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes into %s (%s)\n", n, rid, path)

			return err
		},
	}
	command.Flags().StringVarP(&target, "into", "i", dao.SpansResource, "Target connection, e.g. spans@<project>")

	return &command
}
