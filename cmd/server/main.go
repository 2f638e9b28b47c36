package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"campaign-access-service/internal/config"
	"campaign-access-service/internal/factory"
	"campaign-access-service/internal/handler"
	"campaign-access-service/internal/util"
)

const shutdownGrace = 30 * time.Second

func main() {
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Startup failed", util.ErrorField(err))
	}
	defer f.Close()

	if err := run(f); err != nil {
		util.Fatal("Server exited", util.ErrorField(err))
	}
}

func run(f *factory.Factory) error {
	cfg := f.Config()
	router := buildHandler(f)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if cfg.Server.EnableTLS && cfg.Server.AutoCert && cfg.IsProduction() {
		return serveWithManagedCerts(ctx, f, router)
	}
	return serve(ctx, f, cfg, router)
}

func buildHandler(f *factory.Factory) http.Handler {
	services := f.ServiceFactory()
	logger := util.Get()

	authHandler := handler.NewAuthHandler(services.AuthService(), logger)
	dashboardHandler := handler.NewDashboardHandler(services.AuthService(), services.AccessService(), logger)

	return handler.NewRouter(authHandler, dashboardHandler, f.Config().Server.EnableTLS, logger)
}

// serve runs a single listener: HTTPS when TLS is enabled, plain HTTP
// otherwise. Used in every mode except production with managed certificates.
func serve(ctx context.Context, f *factory.Factory, cfg *config.Config, router http.Handler) error {
	addr := cfg.GetServerAddress()
	if cfg.Server.EnableTLS {
		addr = fmt.Sprintf(":%d", cfg.Server.TLSPort)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	if cfg.Server.EnableTLS {
		srv.TLSConfig = f.TLSManager().GetTLSConfig()
		util.Info("Listening for HTTPS",
			util.String("address", addr),
			util.String("environment", cfg.Environment))
		go func() {
			if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
				errCh <- srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
				return
			}
			errCh <- srv.ListenAndServeTLS("", "")
		}()
	} else {
		util.Warn("Listening for plain HTTP, TLS disabled",
			util.String("address", addr),
			util.String("environment", cfg.Environment))
		go func() { errCh <- srv.ListenAndServe() }()
	}

	return awaitShutdown(ctx, errCh, srv)
}

// serveWithManagedCerts runs the production pair: port 80 answers ACME
// challenges and redirects, port 443 serves the API with autocert.
func serveWithManagedCerts(ctx context.Context, f *factory.Factory, router http.Handler) error {
	tlsManager := f.TLSManager()
	certManager := tlsManager.GetAutocertManager()
	if certManager == nil {
		return errors.New("managed certificates requested but no autocert manager configured")
	}

	challengeSrv := &http.Server{
		Addr:    ":80",
		Handler: certManager.HTTPHandler(nil),
	}
	apiSrv := &http.Server{
		Addr:      ":443",
		Handler:   router,
		TLSConfig: tlsManager.GetTLSConfig(),
	}

	errCh := make(chan error, 2)
	go func() { errCh <- challengeSrv.ListenAndServe() }()
	go func() { errCh <- apiSrv.ListenAndServeTLS("", "") }()

	util.Info("Listening for HTTPS with managed certificates",
		util.String("domain", f.Config().Server.Domain))

	return awaitShutdown(ctx, errCh, apiSrv, challengeSrv)
}

// awaitShutdown blocks until the context is cancelled by a signal or a
// listener fails, then drains the servers within the grace period.
func awaitShutdown(ctx context.Context, errCh <-chan error, servers ...*http.Server) error {
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	util.Info("Shutdown signal received, draining connections")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var firstErr error
	for _, srv := range servers {
		if err := srv.Shutdown(drainCtx); err != nil {
			util.Error("Graceful shutdown incomplete", util.ErrorField(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr == nil {
		util.Info("Server stopped cleanly")
	}
	return firstErr
}
