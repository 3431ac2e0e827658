package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdvu/galleria/catalog"
	"github.com/tdvu/galleria/config"
	"github.com/tdvu/galleria/data"
	"github.com/tdvu/galleria/db"
	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/jobs"
	"github.com/tdvu/galleria/migrations"
	"github.com/tdvu/galleria/persist"
	"github.com/tdvu/galleria/routes"
	"github.com/tdvu/galleria/session"
	"github.com/tdvu/galleria/thumbs"
	"github.com/tdvu/galleria/utils"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	}))
	slog.SetDefault(logger)

	if utils.GetEnv("RESET_DB", "0") == "1" {
		if err := os.Remove(cfg.Galleria.DbPath); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	var store db.Store
	store, err = db.NewSqliteStore(cfg.Galleria.DbPath)
	if err != nil {
		slog.With(slog.Any("error", err)).Warn("Failed to open sqlite store, snapshots will not survive restarts")
		store = db.NewMemoryStore()
	}
	defer store.Close()

	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		panic(err)
	}

	events.Init()

	cat := catalog.New(store)
	cat.Load(data.DefaultSnapshot())

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sess := session.New(cat, rng)

	extractor := thumbs.NewFFmpegExtractor(cfg.Galleria.MediaRoot)
	extractor.FFmpegPath = utils.GetEnv("FFMPEG_PATH", "ffmpeg")
	extractor.FFprobePath = utils.GetEnv("FFPROBE_PATH", "ffprobe")
	deriver := thumbs.NewDeriver(extractor)

	files := persist.NewFileStore(cfg.Galleria.DataPath)
	saver := persist.NewSaver(cfg.Save.Endpoint, cat.ExportSnapshot)

	jobScheduler := jobs.SetupInBackground(cfg, saver)
	if cfg.Galleria.BackgroundJobsEnabled {
		jobScheduler.StartAsync()
		slog.Info("Background jobs have started up in the background.")
	} else {
		slog.Info("Background jobs are disabled.")
	}

	router := routes.Register(http.NewServeMux(), cat, sess, deriver, saver, files, cfg)

	server := &http.Server{
		Addr:    cfg.Galleria.Addr,
		Handler: router,
	}

	go func() {
		slog.Info(fmt.Sprintf("Galleria is running at http://localhost%s", cfg.Galleria.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println(err)
			jobScheduler.Stop()
			os.Exit(1)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	slog.Info("Gracefully shutting down...")
	jobScheduler.Stop()

	// One last snapshot flush, same as the periodic save
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	saver.SaveSilent(ctx)

	if err := server.Shutdown(ctx); err != nil {
		fmt.Println(err)
	}
	slog.Info("Galleria has successfully shut down.")
}
