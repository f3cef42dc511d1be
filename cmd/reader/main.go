package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/migueltarga/kiddo-engine/internal/catalog"
	"github.com/migueltarga/kiddo-engine/internal/config"
	"github.com/migueltarga/kiddo-engine/internal/fetcher"
	"github.com/migueltarga/kiddo-engine/internal/imagecache"
	"github.com/migueltarga/kiddo-engine/internal/logger"
	"github.com/migueltarga/kiddo-engine/internal/storage"
	"github.com/migueltarga/kiddo-engine/pkg/lang"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	store, err := storage.NewFSStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open data directory %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	index := storage.NewContentIndex(store, log)
	loader := catalog.NewLoader(store, index, lang.Canonical(cfg.Language), log)
	remote := catalog.NewRemote(cfg.CatalogURL, cfg.OnlineMode, client, store, index, loader, log)
	images := imagecache.New(store, client, log)

	loader.LoadAll()
	if adopted := remote.ReconcileExisting(); adopted > 0 {
		log.Info("Adopted unindexed story files", "count", adopted)
	}

	fetch := fetcher.New(images, remote, log)
	defer fetch.Close()

	// Session snapshots are optional. A missing or unreachable Redis
	// just means no cross-run resume.
	var sessions *storage.SessionStore
	if cfg.RedisURL != "" {
		sessions, err = storage.NewSessionStore(cfg.RedisURL, log)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = sessions.Ping(ctx)
			cancel()
		}
		if err != nil {
			log.Warn("Session snapshots disabled", "error", err)
			sessions = nil
		} else {
			defer func() {
				_ = sessions.Close()
			}()
		}
	}

	p := tea.NewProgram(NewReaderUI(cfg, log, loader, index, remote, images, fetch, sessions),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
