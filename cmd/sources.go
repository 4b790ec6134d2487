package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/capturehost/internal/api/models"
	"github.com/smazurov/capturehost/internal/desktop"
	"github.com/smazurov/capturehost/internal/dispatcher"
	"github.com/spf13/cobra"
)

// SourcesOptions holds the flags of the sources command.
type SourcesOptions struct {
	Types   []string
	JSON    bool
	Verbose bool
	Factory desktop.CapturerFactory
}

// CreateSourcesCmd creates the sources command.
func CreateSourcesCmd() *cobra.Command {
	opts := &SourcesOptions{}

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List desktop capture sources once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initCLILogging(opts.Verbose)
			return RunSources(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Types, "types", []string{"screen", "window"}, "Media types to list")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output JSON")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

// RunSources creates one media list per type, populates it and writes the
// result to w. Lists that fail to populate are reported, not fatal.
func RunSources(ctx context.Context, opts *SourcesOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	types := make([]desktop.MediaIDType, 0, len(opts.Types))
	for _, s := range opts.Types {
		t, err := desktop.ParseMediaIDType(s)
		if err != nil {
			return err
		}
		types = append(types, t)
	}

	factory := opts.Factory
	if factory == nil {
		factory = desktop.DefaultFactory()
	}
	d := dispatcher.New(dispatcher.Options{Factory: factory})

	var lists []desktop.MediaList
	if err := withUIThread(ctx, func(ctx context.Context) error {
		lists = d.CreateMediaList(ctx, types)
		return nil
	}); err != nil {
		return err
	}

	out := make([]models.MediaListData, 0, len(lists))
	for _, list := range lists {
		entry := models.MediaListData{Type: list.Type().String()}
		if err := list.Update(ctx); err != nil {
			entry.Error = err.Error()
		}
		entry.Sources = models.FromSources(list.Sources())
		out = append(out, entry)
	}

	if opts.JSON {
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, list := range out {
		if list.Error != "" {
			fmt.Fprintf(tw, "%s\t(%s)\n", list.Type, strings.TrimSpace(list.Error))
			continue
		}
		for _, s := range list.Sources {
			fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
		}
	}
	return tw.Flush()
}
