package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	barterd "github.com/iov-one/barter/cmd/barterd/app"
	"github.com/iov-one/barter/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/abci/server"
	"github.com/tendermint/tendermint/libs/log"
)

func startCmd(v *viper.Viper, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(v, logger)
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().Bool(flagDebug, false, "call stack returned on error")
	cmd.Flags().String(flagMetrics, "", "address of the prometheus endpoint, disabled when empty")
	return cmd
}

func start(v *viper.Viper, logger log.Logger) error {
	var reg *prometheus.Registry
	if v.GetString(flagMetrics) != "" {
		reg = prometheus.NewRegistry()
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	app, err := barterd.GenerateApp(v.GetString(flagHome), logger, v.GetBool(flagDebug), registerer)
	if err != nil {
		return err
	}

	addr := v.GetString(flagBind)
	logger.Info("Starting ABCI app", "bind", addr)
	svr, err := server.NewServer(addr, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrHuman, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrHuman, "starting server: %s", err)
	}

	var metrics *http.Server
	if reg != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metrics = &http.Server{Addr: v.GetString(flagMetrics), Handler: mux}
		go func() {
			logger.Info("Serving metrics", "addr", metrics.Addr)
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("Shutting down")

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(ctx); err != nil {
			logger.Error("Metrics shutdown", "err", err)
		}
	}
	return svr.Stop()
}
