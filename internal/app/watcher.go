package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/catalog-client/internal/config"
	"github.com/samvad-hq/catalog-client/internal/logger"
	"github.com/samvad-hq/catalog-client/internal/storage"
	"github.com/samvad-hq/catalog-client/internal/watcher"
	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/httpclient"
	"github.com/samvad-hq/catalog-client/pkg/publishers"
	"github.com/samvad-hq/catalog-client/pkg/watches"
)

// Watcher represents the catalog watcher runtime. It manages the watch loop,
// coordinating between watch targets, the watcher service, and publishers. It
// also handles storage initialization and cleanup.
type Watcher struct {
	cfg           *config.Config
	watchReg      *watches.Registry
	fanout        *publishers.Fanout
	watchService  *watcher.Service
	watchInterval time.Duration
	log           logger.Logger
	store         storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	watchReg, err := watches.LoadRegistry(cfg.WatchesFile)
	if err != nil {
		return nil, fmt.Errorf("load watches registry: %w", err)
	}
	watchList := watchReg.Enabled()
	watchIDs := make([]string, 0, len(watchList))
	for _, w := range watchList {
		watchIDs = append(watchIDs, w.ID)
	}
	log.InfoObj("watches registry loaded", "watches_meta", map[string]any{
		"count": len(watchIDs),
		"ids":   watchIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultBuilders(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	// The transport carries no client-wide timeout; each blocking query sets
	// its own deadline from the wait.
	client := catalog.New(cfg.CatalogAddress, catalog.WithHTTPClient(httpclient.NewRestyClient(0)))
	log.InfoObj("catalog client ready", "catalog_meta", map[string]any{
		"address": client.Address(),
		"dc":      cfg.CatalogDatacenter,
	})

	watchService := watcher.NewService(client, fanout, store, log, watcher.Options{
		Defaults: watches.Defaults{
			Datacenter: cfg.CatalogDatacenter,
			Token:      cfg.CatalogToken,
		},
		Wait:           cfg.WatchWait,
		RequestTimeout: cfg.RequestTimeout,
	})

	return &Watcher{
		cfg:           cfg,
		watchReg:      watchReg,
		fanout:        fanout,
		watchService:  watchService,
		watchInterval: cfg.WatchInterval,
		log:           log,
		store:         store,
	}, nil
}

// Run starts the watch loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.watchService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()
	targets := w.watchReg.Enabled()
	if len(targets) == 0 {
		w.log.WarnObj("no watches configured; watcher idle", "watches_file", w.cfg.WatchesFile)
		<-ctx.Done()
		return nil
	}

	w.log.InfoObj("watch loop starting", "watcher_state", map[string]any{
		"watches_count":    len(targets),
		"publishers_count": w.fanout.Size(),
		"watch_interval":   w.watchInterval.String(),
		"watch_wait":       w.cfg.WatchWait.String(),
	})

	// One loop per target: a long blocking query on one target never holds
	// back the others.
	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.log.DebugObj("watch target loop started", "watch_meta", map[string]any{
				"watch_id": t.ID,
				"kind":     t.Kind,
			})
			if err := w.watchService.Watch(ctx, t, w.watchInterval); err != nil {
				w.log.ErrorObj("watch target loop stopped", "error", err.Error())
			}
		}()
	}
	wg.Wait()

	w.log.InfoObj("watch loop exiting", "reason", ctx.Err().Error())
	return nil
}

// close releases the storage backend and publisher clients.
func (w *Watcher) close() {
	if w == nil {
		return
	}
	if w.fanout != nil {
		if err := w.fanout.Close(); err != nil {
			w.log.ErrorObj("publisher close failed", "error", err.Error())
		}
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}
