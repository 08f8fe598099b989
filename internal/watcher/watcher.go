package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/samvad-hq/catalog-client/internal/domain"
	"github.com/samvad-hq/catalog-client/internal/logger"
	"github.com/samvad-hq/catalog-client/internal/storage"
	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/httpclient"
	"github.com/samvad-hq/catalog-client/pkg/publishers"
	"github.com/samvad-hq/catalog-client/pkg/watches"
)

const (
	defaultMaxTries        = 3
	defaultInitialInterval = 500 * time.Millisecond
	defaultRequestTimeout  = 10 * time.Second
)

// Options tunes a Service.
type Options struct {
	Defaults watches.Defaults

	// Wait is the blocking-query wait sent once a target has an index.
	Wait           time.Duration
	RequestTimeout time.Duration

	MaxTries        uint
	// InitialInterval is the first backoff delay after a transport error.
	InitialInterval time.Duration
}

// Service runs blocking-query passes over watch targets and publishes a
// change event whenever a listing changes.
type Service struct {
	client    CatalogClient
	publisher EventPublisher
	store     storage.Store
	log       logger.Logger
	opts      Options
}

// NewService wires a watcher with its catalog client, publisher and store.
func NewService(client CatalogClient, pub EventPublisher, store storage.Store, log logger.Logger, opts Options) *Service {
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = defaultMaxTries
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = defaultInitialInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Service{
		client:    client,
		publisher: pub,
		store:     store,
		log:       logger.Ensure(log),
		opts:      opts,
	}
}

// Run executes one watch pass over all targets concurrently.
func (s *Service) Run(ctx context.Context, targets []watches.Target) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(targets) == 0 {
		return fmt.Errorf("no watch targets configured")
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for _, t := range targets {
		wg.Add(1)
		go func(t watches.Target) {
			defer wg.Done()
			if err := s.runTarget(ctx, t); err != nil {
				s.logFailure(t, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(t)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Watch runs passes for a single target until ctx is cancelled, so a quiet
// target never delays a busy one. A pass starts as soon as the previous one
// returns but no sooner than interval after the previous one started.
// Failed passes are logged and retried on the same schedule.
func (s *Service) Watch(ctx context.Context, t watches.Target, interval time.Duration) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		start := time.Now()
		if err := s.runTarget(ctx, t); err != nil && ctx.Err() == nil {
			s.logFailure(t, err)
		}
		timer.Reset(max(interval-time.Since(start), 0))
	}
}

func (s *Service) logFailure(t watches.Target, err error) {
	s.log.ErrorObj("watch pass failed", "watch_error", map[string]any{
		"watch_id": t.ID,
		"error":    err.Error(),
	})
}

func (s *Service) runTarget(ctx context.Context, t watches.Target) error {
	snap, _, err := s.store.Get(t.ID)
	if err != nil {
		return fmt.Errorf("load snapshot for watch %s: %w", t.ID, err)
	}

	req, err := t.Request(s.opts.Defaults, snap.Index)
	if err != nil {
		return err
	}

	resp, err := s.send(ctx, req, s.callOptions(snap.Index))
	if err != nil {
		return fmt.Errorf("query watch %s: %w", t.ID, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("query watch %s: catalog returned status %d: %s", t.ID, resp.StatusCode, snippet(resp.Body))
	}

	index := catalog.Index(resp)
	digest := digestOf(resp.Body)
	if !snap.Changed(index, digest) {
		if index != snap.Index {
			snap.Index = index
			return s.save(snap)
		}
		return nil
	}

	if err := s.publish(ctx, t, req.Common().Datacenter, index, digest, resp.Body); err != nil {
		return err
	}
	return s.save(domain.Snapshot{Key: t.ID, Index: index, Digest: digest})
}

// send retries transport errors with exponential backoff. Unsupported
// requests are never retried.
func (s *Service) send(ctx context.Context, req catalog.Request, opts []catalog.CallOption) (*httpclient.Response, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.opts.InitialInterval
	expBackoff.MaxInterval = 30 * s.opts.InitialInterval
	expBackoff.Reset()

	operation := func() (*httpclient.Response, error) {
		resp, err := s.client.Send(ctx, req, opts...)
		if errors.Is(err, catalog.ErrUnsupportedRequest) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(s.opts.MaxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			s.log.WarnObj("catalog query retry", "watch_retry", map[string]any{
				"error":    err.Error(),
				"retry_in": d.String(),
			})
		}),
	)
}

// callOptions adds the blocking wait once there is an index to block on.
// The timeout leaves room for the server's wait jitter (wait/16).
func (s *Service) callOptions(index uint64) []catalog.CallOption {
	timeout := s.opts.RequestTimeout
	if index == 0 || s.opts.Wait <= 0 {
		return []catalog.CallOption{catalog.WithTimeout(timeout)}
	}
	return []catalog.CallOption{
		catalog.WithQuery(catalog.QueryWait, formatWait(s.opts.Wait)),
		catalog.WithTimeout(s.opts.Wait + s.opts.Wait/16 + timeout),
	}
}

func (s *Service) publish(ctx context.Context, t watches.Target, dc string, index uint64, digest string, body []byte) error {
	if s.publisher == nil {
		return nil
	}
	evt := publishers.NewEvent(t.ID, t.Kind, t.Service, dc, index, digest, body)
	sent, err := s.publisher.Publish(ctx, evt)
	if err != nil && sent == 0 {
		return fmt.Errorf("publish change for watch %s: %w", t.ID, err)
	}
	if err != nil {
		s.log.WarnObj("change partially published", "watch_publish", map[string]any{
			"watch_id": t.ID,
			"sent":     sent,
			"error":    err.Error(),
		})
	}
	s.log.InfoObj("catalog change published", "watch_change", map[string]any{
		"watch_id": t.ID,
		"index":    index,
		"sent":     sent,
	})
	return nil
}

func (s *Service) save(snap domain.Snapshot) error {
	if err := s.store.Put(snap); err != nil {
		return fmt.Errorf("save snapshot for watch %s: %w", snap.Key, err)
	}
	return nil
}

func formatWait(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}

func digestOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func snippet(body []byte) string {
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
