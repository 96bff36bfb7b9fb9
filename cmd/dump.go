package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model"
	"github.com/spanlens/spanlens/internal/render"
	"github.com/spanlens/spanlens/internal/view"
)

func dumpCmd() *cobra.Command {
	var pages int

	command := cobra.Command{
		Use:   "dump [RESOURCE[@SCOPE]]",
		Short: "Print a connection as a text table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := cfg.SpanLens.DefaultView
			if len(args) == 1 {
				target = args[0]
			}
			aliases := config.NewAliases()
			if err := aliases.Load(); err != nil {
				logger.Warn("Unable to load aliases", zap.Error(err))
			}
			rid, err := view.Resolve(aliases, cfg.SpanLens, target)
			if err != nil {
				return err
			}

			f, err := openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer f.Close()

			return dump(cmd.Context(), cmd.OutOrStdout(), f.Source(), rid, pages)
		},
	}
	command.Flags().IntVarP(&pages, "pages", "n", 1, "Number of pages to fetch")

	return &command
}

// dump fetches up to pages pages of a connection and prints them.
func dump(ctx context.Context, w io.Writer, src dao.Source, rid dao.ResourceID, pages int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sl := cfg.SpanLens
	timeout, err := sl.GetAPITimeout()
	if err != nil {
		return err
	}
	r, err := model.RendererFor(rid)
	if err != nil {
		return err
	}

	conn := model.NewConnection(src, rid,
		model.WithPageSize(sl.PageSize),
		model.WithTimeout(timeout),
		model.WithConnectionLogger(logger),
	)
	defer conn.Dispose()

	if err := conn.Load(ctx); err != nil {
		return err
	}
	for i := 1; i < pages && conn.HasNext(); i++ {
		if err := conn.Next(ctx, sl.PageSize); err != nil {
			return err
		}
	}

	if err := render.WriteGrid(w, r.Render(model.Nodes(conn.Edges())), sl.UI.Wide); err != nil {
		return err
	}
	if conn.HasNext() {
		_, err = fmt.Fprintf(w, "%d rows, more available\n", conn.Len())
		return err
	}
	_, err = fmt.Fprintf(w, "%d rows\n", conn.Len())

	return err
}
