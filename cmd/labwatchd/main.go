// Package main is the entry point for the labwatchd console watchdog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/watchfire-io/labwatch/internal/buildinfo"
	"github.com/watchfire-io/labwatch/internal/catalog"
	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/daemon/monitor"
	"github.com/watchfire-io/labwatch/internal/daemon/watcher"
	"github.com/watchfire-io/labwatch/internal/models"
)

func main() {
	configPath := flag.String("config", "", "Settings file (default ~/.labwatch/settings.yaml)")
	catalogAddr := flag.String("catalog", "", "Catalog address, overriding catalog_addr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("labwatchd %s\n  Commit: %s\n  Built:  %s\n", buildinfo.Short(), buildinfo.CommitHash, buildinfo.BuildDate)
		return
	}

	log.SetPrefix("[labwatchd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalf("Failed to create global directory: %v", err)
	}

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon already running (PID %d)", info.PID)
	}

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *catalogAddr != "" {
		settings.CatalogAddr = *catalogAddr
	}

	if err := run(settings); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println("Daemon stopped")
}

func run(settings *models.Settings) error {
	cfg, err := monitor.ConfigFromSettings(settings)
	if err != nil {
		return fmt.Errorf("invalid panic signatures: %w", err)
	}

	client, err := catalog.Dial(settings.CatalogAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog: %w", err)
	}
	defer client.Close()

	mgr := monitor.NewManager(client, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Polling works without the watcher; it only shortens the wait.
	w, err := watcher.New(settings.ConsoleLogsDir)
	if err == nil {
		if err = w.Start(); err != nil {
			w.Stop()
		}
	}
	if err != nil {
		log.Printf("Warning: console directory watch disabled: %v", err)
	} else {
		defer w.Stop()
		go forwardNudges(ctx, w, mgr)
	}

	if err := config.SaveDaemonInfo(models.NewDaemonInfo(settings.CatalogAddr, os.Getpid())); err != nil {
		return fmt.Errorf("failed to write daemon info: %w", err)
	}
	defer func() {
		if err := config.RemoveMonitorState(); err != nil {
			log.Printf("Failed to remove monitor state: %v", err)
		}
		if err := config.RemoveDaemonInfo(); err != nil {
			log.Printf("Failed to remove daemon info: %v", err)
		}
	}()

	log.Printf("labwatchd %s started (PID %d), watching %s via catalog %s",
		buildinfo.Short(), os.Getpid(), settings.ConsoleLogsDir, settings.CatalogAddr)

	go func() {
		<-ctx.Done()
		log.Println("Received shutdown signal, stopping monitors...")
	}()

	return mgr.Run(ctx)
}

// forwardNudges wakes the watcher of whichever system's console changed.
func forwardNudges(ctx context.Context, w *watcher.Watcher, mgr *monitor.Manager) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events():
			mgr.Nudge(ev.System)
		}
	}
}
