package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/dedup"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/disambiguation"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/extraction"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/geocoding"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsession"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/mapsync"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/api/timeref"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	verbose     bool
	nominatim   string
	userAgent   string
	file        string
	city        string
	country     string
	incremental bool
	place       string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "itinerary-cli",
		Short: "Resolve itinerary text into map entities",
		Long: `Runs the map pipeline locally and prints JSON.

Examples:
  itinerary-cli resolve --file day1.txt --city Lisbon --country Portugal
  itinerary-cli resolve --file - --city Rome --offline < plan.txt
  itinerary-cli disambiguate --place Paris --country USA
  itinerary-cli time "what should we do this weekend?"`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")

	rootCmd.AddCommand(newResolveCmd(opts), newDisambiguateCmd(opts), newTimeCmd(opts))
	return rootCmd
}

func (o *cliOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newResolveCmd(opts *cliOptions) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Extract, deduplicate and geocode the places in a text file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, opts.file)
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)

			var client geocoding.Client
			if !offline {
				c, err := geocoding.NewNominatimClient(geocoding.ClientConfig{
					BaseURL:   opts.nominatim,
					UserAgent: opts.userAgent,
				}, logger)
				if err != nil {
					return err
				}
				client = c
			}

			rec := &mapsync.Recorder{}
			service := itinerary.NewServiceImpl(
				logger,
				extraction.NewServiceImpl(logger, nil),
				dedup.NewServiceImpl(logger),
				geocoding.NewServiceImpl(logger, client, nil, geocoding.DefaultConfig()),
				disambiguation.NewServiceImpl(logger),
				mapsync.NewEmitter(rec, logger),
				nil,
				nil,
			)

			result, err := service.Resolve(cmd.Context(), mapsession.New("cli"), itinerary.ResolveRequest{
				Text:        text,
				City:        opts.city,
				Country:     opts.country,
				Incremental: opts.incremental,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "itinerary text file, - for stdin")
	cmd.Flags().StringVar(&opts.city, "city", "", "destination city")
	cmd.Flags().StringVar(&opts.country, "country", "", "destination country")
	cmd.Flags().BoolVar(&opts.incremental, "incremental", false, "merge instead of replacing the entity set")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the external geocoder")
	cmd.Flags().StringVar(&opts.nominatim, "nominatim-url", "https://nominatim.openstreetmap.org", "geocoder base url")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", "go-itinerary-mapsync-cli/1.0", "user agent sent to the geocoder")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDisambiguateCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disambiguate",
		Short: "Resolve an ambiguous place name against a country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := disambiguation.NewServiceImpl(opts.logger(cmd)).Resolve(cmd.Context(), types.LocationQuery{
				Place:   opts.place,
				Country: opts.country,
			})
			return writeJSON(cmd.OutOrStdout(), loc)
		},
	}
	cmd.Flags().StringVar(&opts.place, "place", "", "place name")
	cmd.Flags().StringVar(&opts.country, "country", "", "country hint")
	_ = cmd.MarkFlagRequired("place")
	return cmd
}

func newTimeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "time <text>",
		Short: "Find a relative time expression in text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := timeref.NewServiceImpl(opts.logger(cmd)).Resolve(cmd.Context(), args[0])
			return writeJSON(cmd.OutOrStdout(), ref)
		},
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
