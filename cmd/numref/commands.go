package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/numref/internal/config"
	"github.com/dgallion1/numref/internal/localize"
	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/pipeline"
	"github.com/dgallion1/numref/internal/render"
	"github.com/spf13/cobra"
)

type options struct {
	format    string
	locale    string
	catalog   string
	protected string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "numref",
		Short:         "Number headings and figures and resolve references to them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.locale, "locale", "en", "locale of figure and table caption prefixes")
	pf.StringVar(&opts.catalog, "catalog", "", "YAML file with extra caption translations")
	pf.StringVar(&opts.protected, "protected", "code", "comma-separated macros whose content is never numbered")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log transformation details to stderr")

	renderCmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a numbered document as html, text or events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0])
		},
	}
	renderCmd.Flags().StringVarP(&opts.format, "format", "f", "html", "output format: html, text or events")

	registryCmd := &cobra.Command{
		Use:   "registry FILE",
		Short: "Print the numbers assigned to every identifier and the unresolved references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0])
		},
	}

	root.AddCommand(renderCmd, registryCmd)
	return root
}

func newProcessor(stderr io.Writer, opts *options) (*pipeline.Processor, error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cat, err := localize.New(opts.locale)
	if err != nil {
		return nil, err
	}
	if opts.catalog != "" {
		f, err := os.Open(opts.catalog)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := cat.LoadYAML(f); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.catalog, err)
		}
	}
	return pipeline.NewProcessor(cat, config.SplitList(opts.protected), parser.Options{PDFFallbackPdftotext: true}, log), nil
}

func process(ctx context.Context, stderr io.Writer, opts *options, path string, format render.Format) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := newProcessor(stderr, opts)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, pipeline.Request{
		Filename: filepath.Base(path),
		Data:     data,
		Format:   format,
	})
}

func runRender(ctx context.Context, stdout, stderr io.Writer, opts *options, path string) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	res, err := process(ctx, stderr, opts, path, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, res.Output)
	return err
}

func runRegistry(ctx context.Context, stdout, stderr io.Writer, opts *options, path string) error {
	res, err := process(ctx, stderr, opts, path, render.FormatText)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"title":      res.Title,
		"sections":   res.Sections,
		"figures":    res.Figures,
		"numbered":   res.Numbered,
		"unresolved": res.Unresolved,
	})
}
