package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-fetch/fetch"
	"github.com/geoknoesis/rdf-fetch/internal/config"
	"github.com/geoknoesis/rdf-fetch/rdf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type fetchFlags struct {
	contentType string
	headers     []string
	timeout     time.Duration
	order       []string
	byExtension bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.contentType, "content-type", "", "Content type of the dataset, overrides any other source")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Request timeout (default from config)")
	cmd.Flags().StringSliceVar(&f.order, "order", nil, "Content type resolution order (explicit,lookup,metadata)")
	cmd.Flags().BoolVar(&f.byExtension, "by-extension", false, "Infer the content type from the URL path extension")
}

func newRootCmd() *cobra.Command {
	var configPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:          "rdf-fetch",
		Short:        "Fetch RDF datasets from file and HTTP URLs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")

	var ff fetchFlags
	fetchCmd := &cobra.Command{
		Use:   "fetch <url|path>",
		Short: "Fetch a dataset and print it as N-Quads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runFetch(cmd, cfg, ff, args[0])
			if err != nil {
				return err
			}
			_, err = res.Dataset.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	ff.register(fetchCmd)

	var sf fetchFlags
	var resource string
	var split bool
	spreadCmd := &cobra.Command{
		Use:   "spread <url|path>",
		Short: "Fetch a dataset, reassign its graphs and print it as N-Quads",
		Long: "Fetch a dataset and reassign the graph of every quad: to --resource when set,\n" +
			"to the subject with --split, unchanged otherwise. The graphs of the input\n" +
			"are listed on stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runFetch(cmd, cfg, sf, args[0])
			if err != nil {
				return err
			}
			output := rdf.NewDataset()
			spread, err := fetch.SpreadDataset(res.Dataset, output, fetch.SpreadOptions{Resource: resource, Split: split})
			if err != nil {
				return err
			}
			for _, r := range spread.Resources {
				fmt.Fprintf(cmd.ErrOrStderr(), "resource %s\n", r)
			}
			_, err = output.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	sf.register(spreadCmd)
	spreadCmd.Flags().StringVar(&resource, "resource", "", "Graph IRI for every quad")
	spreadCmd.Flags().BoolVar(&split, "split", false, "Use each quad's subject as its graph")

	rootCmd.AddCommand(fetchCmd, spreadCmd)
	return rootCmd
}

func runFetch(cmd *cobra.Command, cfg *config.Config, flags fetchFlags, target string) (*fetch.Result, error) {
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	for _, warning := range cfg.Validate() {
		logger.Warn("config", "warning", warning)
	}

	order, err := cfg.ResolutionOrder()
	if err != nil {
		return nil, err
	}
	if len(flags.order) > 0 {
		cfg.Resolve.Order = flags.order
		if order, err = cfg.ResolutionOrder(); err != nil {
			return nil, err
		}
	}
	header, err := parseHeaders(flags.headers)
	if err != nil {
		return nil, err
	}
	timeout := flags.timeout
	if timeout == 0 {
		timeout = cfg.HTTP.Timeout
	}

	f := fetch.New(
		fetch.WithAcquirer(fetch.NewSchemeAcquirer(
			&fetch.FileAcquirer{},
			fetch.NewHTTPAcquirer(nil, cfg.HTTP.UserAgent, cfg.HTTP.RateLimit, cfg.HTTP.Burst),
		)),
		fetch.WithResolutionOrder(order...),
		fetch.WithDecodeOptions(cfg.DecodeOptions()),
		fetch.WithLogger(logger),
	)
	opts := fetch.Options{
		URL:         toURL(target),
		ContentType: flags.contentType,
		Header:      header,
		Timeout:     timeout,
	}
	if flags.byExtension {
		opts.Lookup = fetch.ExtensionLookup(nil)
	}
	return f.Fetch(cmd.Context(), opts)
}

// toURL turns a local path into a file URL; anything with a scheme is kept.
func toURL(target string) string {
	if u, err := url.Parse(target); err == nil && len(u.Scheme) > 1 {
		return target
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func parseHeaders(values []string) (http.Header, error) {
	header := http.Header{}
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", v)
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return header, nil
}
