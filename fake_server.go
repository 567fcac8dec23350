package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/fakeapi"

	"github.com/spf13/cobra"
)

const defaultPort = 8111

func newFakeServerCommand(stderr io.Writer) *cobra.Command {
	var (
		port     int
		delay    time.Duration
		posts    int
		users    int
		seed     uint64
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory posts/users API for local runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.NewLogger(config.LoggingConfig{Level: logLevel, Format: "console"}, stderr)
			data := fakeapi.NewDataset(posts, users, seed)
			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           fakeapi.New(fakeapi.Options{Dataset: &data, Delay: delay, Logger: &logger}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			logger.Info().Int("port", port).Int("posts", posts).Int("users", users).Dur("delay", delay).Msg("fake API listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info().Msg("fake API stopped")
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&port, "port", defaultPort, "port to listen on")
	fs.DurationVar(&delay, "delay", 0, "delay added before every response")
	fs.IntVar(&posts, "posts", fakeapi.DefaultPostCount, "number of posts to serve")
	fs.IntVar(&users, "users", fakeapi.DefaultUserCount, "number of users to serve")
	fs.Uint64Var(&seed, "seed", 1, "seed for generated post and user content")
	fs.StringVar(&logLevel, "log-level", "info", "request log level")
	return cmd
}
