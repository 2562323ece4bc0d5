package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pugetworks/healthmap-cli/internal/fetcher"
	"github.com/pugetworks/healthmap-cli/internal/geo"
	"github.com/pugetworks/healthmap-cli/internal/inspection"
	"github.com/pugetworks/healthmap-cli/internal/pipeline"
)

var (
	servePort    int
	serveFixture string
	serveCount   int
	serveSortKey string
	serveReverse bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the inspection map once and serve it over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		key, err := geo.ParseSortKey(serveSortKey)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		p := pipeline.New(
			buildSource(serveFixture),
			geo.NewEnricher(buildGeocoder(st)),
			pipeline.Options{Concurrency: cfg.Geocode.Concurrency},
		)

		result, err := p.Run(ctx, fetcher.Query{}, key, serveCount, serveReverse)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := geo.WriteCollection(&buf, result.Collection); err != nil {
			return err
		}
		body := buf.Bytes()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
		})
		r.Get("/features.geojson", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/geo+json")
			w.WriteHeader(http.StatusOK)
			w.Write(body) //nolint:errcheck
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serving inspection map",
				zap.Int("port", port),
				zap.Int("features", len(result.Collection.Features)),
			)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveFixture, "fixture", "", "read the results page from a saved file instead of fetching")
	serveCmd.Flags().IntVar(&serveCount, "count", inspection.DefaultRecordLimit, "maximum records to extract")
	serveCmd.Flags().StringVar(&serveSortKey, "sort", string(geo.SortHighScore), "sort key: average, highscore, or most")
	serveCmd.Flags().BoolVar(&serveReverse, "reverse", true, "sort descending (worst scores first)")
	rootCmd.AddCommand(serveCmd)
}
