package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated configs over HTTP and regenerate on a schedule",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	p := buildPipeline(cfg, log)

	// Generate once at startup so the server never starts empty.
	if err := p.RunDir(ctx, cfg.Input.Dir, cfg.Output.Dir); err != nil {
		log.WithError(err).Warn("初次生成未全部成功")
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.HTTP.RefreshCron, func() {
		if err := p.RunDir(ctx, cfg.Input.Dir, cfg.Output.Dir); err != nil {
			log.WithError(err).Warn("定时生成未全部成功")
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/subs/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		// Restrict to flat .yaml files inside the output dir.
		if !strings.HasSuffix(name, ".yaml") || name != filepath.Base(name) {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
		http.ServeFile(w, req, filepath.Join(cfg.Output.Dir, name))
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("HTTP 服务已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
