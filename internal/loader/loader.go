// Package loader decides, per catalog session, whether the in-memory working
// set is sufficient for the current view or must be grown: first page from
// cache, seed-or-fetch when the store is empty, and a one-time full-corpus
// escalation when search or grouping needs full accuracy.
package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"philately/catalog/internal/client"
	"philately/catalog/internal/domain"
	"philately/catalog/internal/store"
)

// ErrReseedInFlight rejects a clear+reseed while another one is running; the
// record store is a single shared resource and reseeds are serialized by the
// state machine, not a lock primitive.
var ErrReseedInFlight = errors.New("catalog reseed already in flight")

// State names one phase of the per-session load state machine.
type State string

const (
	StateEmpty       State = "empty"
	StateSeeding     State = "seeding"
	StateReady       State = "ready"
	StateLoadingPage State = "loadingPage"
	StateLoadingAll  State = "loadingAll"
)

// Source marks where the working set came from, surfaced to the UI so an
// offline fallback is visible.
const (
	SourceRemote = "remote"
	SourceSeed   = "seed"
	SourceCache  = "cache"
)

// Snapshot is a consistent copy of the controller's observable state. The
// Version ticks on every records/completeness change, so callers can tell a
// cached grouped tree is stale across a completeness transition.
type Snapshot struct {
	Records  []domain.StampRecord
	State    State
	Complete bool
	HasMore  bool
	Source   string
	Version  uint64
	Progress domain.FetchProgress
	Err      error
}

// Controller owns the working set for one catalog session.
type Controller struct {
	store    store.Store
	client   client.CatalogClient
	seed     func() []domain.StampRecord
	pageSize int

	mu         sync.Mutex
	generation uuid.UUID
	state      State
	records    []domain.StampRecord
	complete   bool
	hasMore    bool
	source     string
	version    uint64
	progress   domain.FetchProgress
	lastErr    error
}

func NewController(st store.Store, cl client.CatalogClient, seed func() []domain.StampRecord, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Controller{
		store:      st,
		client:     cl,
		seed:       seed,
		pageSize:   pageSize,
		generation: uuid.New(),
		state:      StateEmpty,
	}
}

// Start runs the view-mount transition: first page from cache if the store
// has rows, otherwise fetch-and-seed (falling back to the bundled dataset
// when the remote is unreachable). Idempotent after the first call.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateEmpty {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation

	empty, err := c.store.IsEmpty(ctx)
	if err != nil {
		log.Warnf("⚠️ Store unreadable on startup, reseeding: %v", err)
		empty = true
	}

	if !empty {
		page, more, err := c.store.GetPage(ctx, 0, c.pageSize)
		if err == nil {
			c.records = page
			c.hasMore = more
			c.complete = !more
			c.source = SourceCache
			c.state = StateReady
			c.version++
			c.mu.Unlock()
			log.Infof("✅ Catalog ready from cache: %d records (hasMore=%v)", len(page), more)
			return nil
		}
		log.Warnf("⚠️ Cached first page unreadable, reseeding: %v", err)
	}

	c.state = StateSeeding
	c.mu.Unlock()

	return c.seedFrom(ctx, gen)
}

// LoadMore materializes the next cached page into the working set, triggered
// by infinite scroll near the bottom. A failed page load defensively stops
// further attempts instead of retrying forever.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	offset := len(c.records)
	c.state = StateLoadingPage
	c.mu.Unlock()

	page, more, err := c.store.GetPage(ctx, offset, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil // superseded by a refresh
	}
	c.state = StateReady
	if err != nil {
		log.Errorf("❌ Failed to load catalog page at offset %d: %v", offset, err)
		c.hasMore = false
		c.lastErr = err
		c.version++
		return nil
	}
	c.records = append(c.records, page...)
	c.hasMore = more
	c.complete = !more
	c.version++
	return nil
}

// EnsureFullCorpus escalates to the full stored corpus. Search and grouping
// need every record for accurate results, so this runs once per session: the
// complete state is terminal until a refresh starts a new generation.
func (c *Controller) EnsureFullCorpus(ctx context.Context) error {
	c.mu.Lock()
	if c.complete || c.state != StateReady {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	c.state = StateLoadingAll
	c.mu.Unlock()

	all, err := c.store.GetAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil
	}
	c.state = StateReady
	if err != nil {
		log.Errorf("❌ Full corpus load failed, keeping partial working set: %v", err)
		c.lastErr = err
		return err
	}
	c.records = all
	c.hasMore = false
	c.complete = true
	c.lastErr = nil
	c.version++
	log.Infof("✅ Full catalog corpus materialized: %d records", len(all))
	return nil
}

// Refresh clears the store and refetches from the remote. Only one reseed may
// run at a time; a concurrent attempt is rejected. In-flight work from the
// previous generation can no longer overwrite state once this returns.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSeeding {
		c.mu.Unlock()
		return ErrReseedInFlight
	}
	c.generation = uuid.New()
	gen := c.generation
	c.state = StateSeeding
	c.records = nil
	c.complete = false
	c.hasMore = false
	c.version++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		log.Warnf("⚠️ Failed to clear store before reseed, recreating schema: %v", err)
		if err := c.store.Recreate(ctx); err != nil {
			log.Errorf("❌ Failed to recreate store schema: %v", err)
		}
	}

	return c.seedFrom(ctx, gen)
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]domain.StampRecord, len(c.records))
	copy(records, c.records)
	return Snapshot{
		Records:  records,
		State:    c.state,
		Complete: c.complete,
		HasMore:  c.hasMore,
		Source:   c.source,
		Version:  c.version,
		Progress: c.progress,
		Err:      c.lastErr,
	}
}

// seedFrom fetches the whole remote catalog (reporting progress), falling
// back to the bundled seed dataset when nothing could be fetched, and applies
// the result unless a newer generation superseded this one.
func (c *Controller) seedFrom(ctx context.Context, gen uuid.UUID) error {
	fetched, fetchErr := c.client.FetchAll(ctx, func(p domain.FetchProgress) {
		c.mu.Lock()
		if c.generation == gen {
			c.progress = p
		}
		c.mu.Unlock()
	})

	source := SourceRemote
	if len(fetched) == 0 {
		if fetchErr != nil {
			log.Warnf("⚠️ Remote catalog unavailable, falling back to seed data: %v", fetchErr)
		}
		fetched = c.seed()
		source = SourceSeed
	} else if fetchErr != nil {
		log.Warnf("⚠️ Remote fetch incomplete, keeping %d records: %v", len(fetched), fetchErr)
	}

	c.mu.Lock()
	superseded := c.generation != gen
	c.mu.Unlock()
	if superseded {
		log.Debugf("Discarding stale seed completion for generation %s", gen)
		return nil
	}

	if err := c.store.BulkInsert(ctx, fetched); err != nil {
		log.Warnf("⚠️ Failed to persist seeded records, continuing in memory: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		log.Debugf("Discarding stale seed completion for generation %s", gen)
		return nil
	}
	c.records = fetched
	c.hasMore = false
	c.complete = fetchErr == nil
	c.source = source
	c.state = StateReady
	c.lastErr = fetchErr
	c.progress = domain.FetchProgress{}
	c.version++
	log.Infof("✅ Catalog seeded from %s: %d records", source, len(fetched))
	return nil
}
