package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdchunk/mdchunk/internal/api"
	"github.com/mdchunk/mdchunk/internal/config"
	"github.com/mdchunk/mdchunk/internal/converter"
	"github.com/mdchunk/mdchunk/internal/headings"
	"github.com/mdchunk/mdchunk/internal/outline"
	"github.com/mdchunk/mdchunk/internal/pipeline"
	"github.com/mdchunk/mdchunk/internal/tables"
)

var (
	verbose bool
	log     *slog.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "mdchunk",
		Short: "Repair and chunk markdown converted from PDFs",
		Long: `mdchunk repairs structural damage in markdown produced by PDF
conversion (broken heading levels, split tables, layout artifacts) and
segments the result into chunks sized for retrieval indexes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(log)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newConvertCmd(), newBatchCmd(), newInfoCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type pipelineFlags struct {
	targetChunkSize int
	maxChunkSize    int
	minChunkSize    int
	noFrontmatter   bool
	strictHeadings  bool
	format          string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.targetChunkSize, "chunk-size", 2000, "target chunk size in characters")
	cmd.Flags().IntVar(&f.maxChunkSize, "max-chunk-size", 4000, "hard upper bound on chunk size")
	cmd.Flags().IntVar(&f.minChunkSize, "min-chunk-size", 200, "advisory lower bound on chunk size")
	cmd.Flags().BoolVar(&f.noFrontmatter, "no-frontmatter", false, "omit YAML frontmatter from markdown output")
	cmd.Flags().BoolVar(&f.strictHeadings, "strict-headings", false, "demote headings absent from the outline to bold text")
	cmd.Flags().StringVar(&f.format, "format", "markdown", "output format: markdown or json")
}

func (f *pipelineFlags) config() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Segment.TargetChunkSize = f.targetChunkSize
	cfg.Segment.MaxChunkSize = f.maxChunkSize
	cfg.Segment.MinChunkSize = f.minChunkSize
	cfg.IncludeFrontmatter = !f.noFrontmatter
	cfg.Headings.Strict = f.strictHeadings
	cfg.OutputFormat = pipeline.OutputFormat(f.format)
	return cfg
}

func newConvertCmd() *cobra.Command {
	var flags pipelineFlags
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert and chunk a single document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			conv, err := converter.ForFile(path)
			if err != nil {
				return err
			}
			in, err := conv.Convert(path)
			if err != nil {
				return fmt.Errorf("convert %s: %w", path, err)
			}

			p, err := pipeline.New(flags.config(), log)
			if err != nil {
				return err
			}
			res, err := p.Run(in)
			if err != nil {
				return fmt.Errorf("process %s: %w", path, err)
			}
			rendered, err := p.Render(res)
			if err != nil {
				return err
			}

			log.Info("converted", "input", path, "chunks", len(res.Chunks))

			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			}
			return os.WriteFile(output, []byte(rendered), 0o644)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var flags pipelineFlags
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Convert every supported document in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.New(flags.config(), log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := p.RunBatch(ctx, args[0], args[1], workers)
			if err != nil {
				return err
			}
			log.Info("batch complete", "processed", summary.Processed, "failed", summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Failed+summary.Processed)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent workers")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print document metadata and outline without converting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			conv, err := converter.ForFile(path)
			if err != nil {
				return err
			}
			res, err := conv.Convert(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			m := res.Metadata
			fmt.Fprintf(out, "Title:    %s\n", m.Title)
			if m.Author != "" {
				fmt.Fprintf(out, "Author:   %s\n", m.Author)
			}
			if m.Subject != "" {
				fmt.Fprintf(out, "Subject:  %s\n", m.Subject)
			}
			if m.PageCount > 0 {
				fmt.Fprintf(out, "Pages:    %d\n", m.PageCount)
			}
			if hs, ts, err := documentStats(res); err == nil {
				fmt.Fprintf(out, "Headings: %d (%d matched to outline, %d level corrections needed)\n",
					hs.TotalHeadings, hs.MatchedToOutline, hs.LevelCorrections)
				fmt.Fprintf(out, "Tables:   %d (%d potential page-break merges)\n",
					ts.TotalTables, ts.PotentialMerges)
			}
			fmt.Fprintf(out, "Outline:  %d entries\n", len(res.Outline))
			for _, e := range res.Outline {
				indent := ""
				for i := 1; i < e.Level; i++ {
					indent += "  "
				}
				if e.Page > 0 {
					fmt.Fprintf(out, "  %s%s (p.%d)\n", indent, e.Title, e.Page)
				} else {
					fmt.Fprintf(out, "  %s%s\n", indent, e.Title)
				}
			}
			return nil
		},
	}
}

func documentStats(res *converter.Result) (headings.Stats, tables.Stats, error) {
	corr, err := headings.New(outline.NewIndex(res.Outline), headings.DefaultConfig())
	if err != nil {
		return headings.Stats{}, tables.Stats{}, err
	}
	merger, err := tables.New(tables.DefaultConfig())
	if err != nil {
		return headings.Stats{}, tables.Stats{}, err
	}
	return corr.Stats(res.Markdown), merger.Stats(res.Markdown), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))

			srv := api.NewServer(log, cfg)
			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting mdchunk", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}
