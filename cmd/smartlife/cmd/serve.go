package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kwhite/smartlife/api"
	"github.com/kwhite/smartlife/hub"
	"github.com/kwhite/smartlife/storage"
	bboltstorage "github.com/kwhite/smartlife/storage/bbolt"
	"github.com/kwhite/smartlife/storage/sealed"
	"github.com/kwhite/smartlife/tuya"
	"github.com/kwhite/smartlife/web"
)

var (
	port           int
	dataDir        string
	sealPassphrase string
	endpoint       string
)

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// openStore opens the bbolt-backed store, wrapped with encryption at rest
// when a seal passphrase is set.
func openStore() (storage.Store, func() error, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	bolt, err := bboltstorage.NewStoreFromFile(dataDir+"/smartlife.db", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	var store storage.Store = bolt
	if sealPassphrase != "" {
		store, err = sealed.NewStore(bolt, sealPassphrase)
		if err != nil {
			bolt.Close()
			return nil, nil, fmt.Errorf("failed to unseal store: %w", err)
		}
	}
	return store, bolt.Close, nil
}

func newHub(store storage.Store, notices *api.NoticeBuffer, log zerolog.Logger) *hub.Hub {
	var clientOpts []tuya.Option
	if endpoint != "" {
		clientOpts = append(clientOpts, tuya.WithEndpoint(endpoint))
	}
	client := tuya.NewClient(clientOpts...)

	opts := []hub.Option{hub.WithLogger(log)}
	if notices != nil {
		opts = append(opts, hub.WithNotifier(notices))
	}
	return hub.New(client, store, opts...)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local controller server",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		notices := api.NewNoticeBuffer()
		h := newHub(store, notices, log)
		h.Init(cmd.Context())

		a := api.New(h, api.WithNotices(notices), api.WithLogger(log))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		webHandler, err := web.Handler()
		if err != nil {
			return err
		}
		r.Handle("/*", webHandler)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 8484, "Port to listen on")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory for persistent data")
	rootCmd.PersistentFlags().StringVar(&sealPassphrase, "seal-passphrase", os.Getenv("SMARTLIFE_SEAL_PASSPHRASE"), "Passphrase for encrypting the store at rest")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Override the cloud endpoint template (testing)")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/smartlife"
	}
	return "./data"
}
