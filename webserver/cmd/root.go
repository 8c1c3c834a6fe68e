package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/activation"
	"github.com/mordilloSan/go-logger/logger"

	"github.com/mordilloSan/hostnodes/common/config"
	"github.com/mordilloSan/hostnodes/nodes"
	"github.com/mordilloSan/hostnodes/webserver/web"
)

func initLogger(verbose bool) {
	var levels []logger.Level
	if verbose {
		levels = logger.AllLevels() // Includes DEBUG
	} else {
		levels = []logger.Level{logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel}
	}
	logger.Init(logger.Config{
		Levels: levels,
	})
}

// nodeOptions maps the config file onto node construction options.
func nodeOptions(s *config.Settings) nodes.Options {
	return nodes.Options{
		HostnameSource:     s.Host.HostnameSource,
		DiskSource:         s.Disk.Source,
		DiskTimeout:        s.Disk.Timeout,
		DiskIncludeAll:     s.Disk.IncludeAll,
		MeminfoPath:        s.Memory.MeminfoPath,
		AllowBaseOverwrite: s.Memory.AllowBaseOverwrite,
	}
}

func RunServer(cfg ServerConfig) {
	// -------------------------------------------------------------------------
	// Logging (from flags)
	// -------------------------------------------------------------------------
	verbose := cfg.Verbose
	initLogger(verbose)
	logger.InfoKV("server starting", "verbose", verbose, "version", config.Version)

	settings := cfg.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	// -------------------------------------------------------------------------
	// Nodes
	// -------------------------------------------------------------------------
	if err := nodes.RegisterHandlers(nodeOptions(settings)); err != nil {
		logger.Errorf("failed to register nodes: %v", err)
		os.Exit(1)
	}

	// -------------------------------------------------------------------------
	// HTTP server
	// -------------------------------------------------------------------------
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           web.BuildRouter(web.Config{Verbose: verbose}),
		ErrorLog:          log.New(web.HTTPErrorLogAdapter{}, "", 0),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		// -------- systemd socket activation first ----------
		listeners, actErr := activation.Listeners()
		if actErr != nil {
			logger.Warnf("activation.Listeners error: %v", actErr)
		}
		if len(listeners) > 0 {
			var wg sync.WaitGroup
			for _, l := range listeners {
				wg.Add(1)
				go func(lis net.Listener) {
					defer wg.Done()
					if e := srv.Serve(lis); e != nil && !errors.Is(e, http.ErrServerClosed) {
						logger.Errorf("server error: %v", e)
						os.Exit(1)
					}
				}(l)
			}
			logger.Infof("Socket-activated HTTP server listening on %d inherited socket(s)", len(listeners))
			wg.Wait()
			close(done)
			return
		}

		// -------- fallback: self-bind (manual runs) ----------
		logger.Infof("HTTP server (self-bound) at http://localhost:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
		close(done)
	}()

	// -------------------------------------------------------------------------
	// Shutdown coordination
	// -------------------------------------------------------------------------
	select {
	case <-quit:
		logger.Infof("Shutdown signal received")
	case <-done:
		logger.Infof("HTTP server stopped, beginning shutdown...")
	}

	srv.SetKeepAlivesEnabled(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warnf("Graceful HTTP shutdown timed out; forcing close of remaining connections.")
			if cerr := srv.Close(); cerr != nil && !errors.Is(cerr, http.ErrServerClosed) {
				logger.Warnf("HTTP server force-close error: %v", cerr)
			}
		} else {
			logger.Warnf("HTTP server shutdown error: %v", err)
		}
	} else {
		logger.Infof("HTTP server closed")
	}

	logger.Infof("Server stopped.")
}
