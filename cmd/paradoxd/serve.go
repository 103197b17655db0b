package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
	"github.com/danielpatrickdp/paradox-engine/internal/transport"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the paradox gRPC service",
	Long: `Starts the ParadoxService (Score, QueryMemory, BatchResolve,
ArchiveResolved, Stats) plus the standard health service.

When store.path is set, memories and genealogy are restored on start and
persisted on archive and shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	shutdown, err := cfg.Server.ShutdownDuration()
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.NewStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}

	eng, err := engine.New(engine.Options{
		Bank:   cfg.BankConfig(),
		Store:  st,
		Logger: logger.Named("engine"),
	})
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("close engine", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := transport.NewServer(eng, logger.Named("grpc"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("paradox service listening",
			zap.String("addr", lis.Addr().String()),
			zap.String("store", cfg.Store.Path))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", shutdown))
		srv.Stop(shutdown)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
