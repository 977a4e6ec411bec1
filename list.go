package pagestore

import (
	"context"
	"errors"
	"math"
)

const (
	// DefaultBatch is the page size used when Batch is not given.
	DefaultBatch = 25

	// DefaultLimit leaves the list length effectively unbounded.
	DefaultLimit = math.MaxInt
)

// ListOption customizes a List handle.
type ListOption func(*listConfig)

type listConfig struct {
	limit int
	batch int
}

// Limit caps the stored length of the list. Saving a longer list truncates
// it; appending at the cap evicts the oldest page first (FIFO). A limit of 0
// makes every save a delete.
func Limit(n int) ListOption {
	return func(c *listConfig) {
		if n >= 0 {
			c.limit = n
		}
	}
}

// Batch sets the page size for a list created by this handle. The batch size
// is fixed once the list exists on disk: later handles append with the
// stored size, whatever their own Batch says.
func Batch(n int) ListOption {
	return func(c *listConfig) {
		if n >= 1 {
			c.batch = n
		}
	}
}

// AppendOption customizes a single Append call.
type AppendOption[E any] func(*appendConfig[E])

type appendConfig[E any] struct {
	first  bool
	dedupe func(E) bool
}

// First inserts the element at the front of the active page instead of the
// end.
func First[E any]() AppendOption[E] {
	return func(c *appendConfig[E]) {
		c.first = true
	}
}

// Dedupe removes at most one existing element matching pred before the
// insertion, scanning the newest page from its end and then earlier pages
// backwards. Combined with First this implements move-to-front semantics.
func Dedupe[E any](pred func(E) bool) AppendOption[E] {
	return func(c *appendConfig[E]) {
		c.dedupe = pred
	}
}

// List is a typed handle on one paginated collection stored under key.
// Elements live in page records "<key>.1" .. "<key>.N" with bookkeeping in
// "<key>.meta". Handles are cheap; create one per key and element type.
//
// A key is either absent (no metadata, no pages) or populated (metadata plus
// pages 1..totalPages). Pages are written before metadata, so a crash
// mid-save leaves at worst orphan pages under stale metadata; readers treat
// such a key as absent.
type List[E any] struct {
	store *Store
	key   string
	limit int
	batch int
}

// NewList creates a handle for the paginated list stored under key.
// Defaults: batch size DefaultBatch, no size limit.
func NewList[E any](s *Store, key string, opts ...ListOption) *List[E] {
	cfg := listConfig{limit: DefaultLimit, batch: DefaultBatch}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &List[E]{store: s, key: key, limit: cfg.limit, batch: cfg.batch}
}

// Save replaces the whole list with items, truncated to the handle's limit.
// A nil or empty (after truncation) items removes the key entirely. Pages
// already written are not rolled back when a later write fails.
func (l *List[E]) Save(ctx context.Context, items []E) error {
	if l.key == "" {
		return ErrEmptyKey
	}

	l.store.locks.lock(l.key)
	defer l.store.locks.unlock(l.key)
	return l.saveLocked(ctx, items)
}

func (l *List[E]) saveLocked(ctx context.Context, items []E) error {
	if items == nil {
		return l.store.removeLocked(ctx, l.key)
	}
	if len(items) > l.limit {
		items = items[:l.limit]
	}
	if len(items) == 0 {
		return l.store.removeLocked(ctx, l.key)
	}

	batch := min(l.batch, l.limit)
	if batch < 1 {
		batch = 1
	}

	pages := (len(items) + batch - 1) / batch
	for i := 0; i < pages; i++ {
		lo := i * batch
		hi := min(lo+batch, len(items))
		if err := l.writePage(ctx, i+1, items[lo:hi]); err != nil {
			return err
		}
	}
	if err := l.writeMeta(ctx, Meta{TotalPages: pages, ItemCount: len(items), MaxBatchSize: batch}); err != nil {
		return err
	}

	// A previous larger save may have left one page past the new end.
	l.deleteStale(ctx, pages+1)
	l.store.notify(l.key)
	return nil
}

// Append inserts element into the list, creating it when absent. The first
// append fixes the list's batch size from this handle; at the handle's
// limit the oldest page is evicted first.
func (l *List[E]) Append(ctx context.Context, element E, opts ...AppendOption[E]) error {
	if l.key == "" {
		return ErrEmptyKey
	}
	var cfg appendConfig[E]
	for _, opt := range opts {
		opt(&cfg)
	}

	l.store.locks.lock(l.key)
	defer l.store.locks.unlock(l.key)

	meta, ok, err := l.readMeta(ctx)
	if err != nil {
		return err
	}
	if !ok {
		// First append seeds the list, batch size included.
		return l.saveLocked(ctx, []E{element})
	}

	totalPages := meta.TotalPages
	itemCount := meta.ItemCount
	batch := meta.MaxBatchSize
	if batch < 1 {
		batch = 1
	}

	// Eviction: at the limit, drop the oldest page by shifting every later
	// page down one slot. The discarded page is assumed full, so itemCount
	// can drift high when pages were only partially filled.
	if itemCount >= l.limit {
		if totalPages > 1 {
			if err := l.shiftPagesDown(ctx, totalPages); err != nil {
				return err
			}
			totalPages--
		} else {
			l.deleteStale(ctx, 1)
		}
		itemCount -= batch
		if itemCount < 0 {
			itemCount = 0
		}
	}

	if totalPages < 1 {
		totalPages = 1
	}
	last, err := l.readPage(ctx, totalPages)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Reported in readPage; the slot is overwritten below.
		last = nil
	}

	if cfg.dedupe != nil {
		last, itemCount = l.dedupe(ctx, cfg.dedupe, last, totalPages, itemCount)
	}

	if len(last) >= batch {
		totalPages++
		last = nil
	}

	if cfg.first {
		last = append([]E{element}, last...)
	} else {
		last = append(last, element)
	}

	if err := l.writePage(ctx, totalPages, last); err != nil {
		return err
	}
	if err := l.writeMeta(ctx, Meta{TotalPages: totalPages, ItemCount: itemCount + 1, MaxBatchSize: batch}); err != nil {
		return err
	}
	l.deleteStale(ctx, totalPages+1)
	l.store.notify(l.key)
	return nil
}

// shiftPagesDown moves pages 2..totalPages to 1..totalPages-1, discarding
// the old page 1. Pages are shifted as raw bytes. A partial failure is not
// rolled back.
func (l *List[E]) shiftPagesDown(ctx context.Context, totalPages int) error {
	for i := 2; i <= totalPages; i++ {
		data, err := l.store.driver.Read(ctx, pageKey(l.key, i))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			l.store.report(ctx, err, "List %s shift read page %d failed", l.key, i)
			return err
		}
		if err := l.store.driver.Write(ctx, pageKey(l.key, i-1), data); err != nil {
			l.store.report(ctx, err, "List %s shift write page %d failed", l.key, i-1)
			return err
		}
	}
	return nil
}

// dedupe removes at most one element matching pred. The newest page is
// mutated in memory only; a match in an earlier page is persisted
// immediately and the newest page is left as loaded.
func (l *List[E]) dedupe(ctx context.Context, pred func(E) bool, last []E, totalPages, itemCount int) ([]E, int) {
	for i := len(last) - 1; i >= 0; i-- {
		if pred(last[i]) {
			return append(last[:i], last[i+1:]...), itemCount - 1
		}
	}

	for p := totalPages - 1; p >= 1; p-- {
		page, err := l.readPage(ctx, p)
		if err != nil {
			continue
		}
		for i := len(page) - 1; i >= 0; i-- {
			if pred(page[i]) {
				page = append(page[:i], page[i+1:]...)
				if err := l.writePage(ctx, p, page); err == nil {
					itemCount--
				}
				return last, itemCount
			}
		}
	}
	return last, itemCount
}

// All returns the whole list in storage order. A missing or corrupt page
// stops the walk: the accumulated prefix is returned and the failure is
// reported, never an error. An absent key yields an empty list.
func (l *List[E]) All(ctx context.Context) []E {
	return l.all(ctx, false)
}

// AllDesc returns the whole list walking pages from the newest backwards.
func (l *List[E]) AllDesc(ctx context.Context) []E {
	return l.all(ctx, true)
}

func (l *List[E]) all(ctx context.Context, reverse bool) []E {
	if l.key == "" {
		return nil
	}

	l.store.locks.rlock(l.key)
	defer l.store.locks.runlock(l.key)

	meta, ok, _ := l.readMeta(ctx)
	if !ok {
		return nil
	}

	var out []E
	for i := 0; i < meta.TotalPages; i++ {
		n := i + 1
		if reverse {
			n = meta.TotalPages - i
		}
		page, err := l.readPage(ctx, n)
		if err != nil {
			break
		}
		out = append(out, page...)
	}
	return out
}

// Page returns one page of the list by logical page number (1-based).
// Out-of-range pages and read failures degrade to an empty page with the
// boundary Pagination.
func (l *List[E]) Page(ctx context.Context, page int) *Paged[E] {
	return l.page(ctx, page, false)
}

// PageDesc returns logical page number page of the reversed list: page 1 is
// the physically last page. Pagination still counts logical pages upward.
func (l *List[E]) PageDesc(ctx context.Context, page int) *Paged[E] {
	return l.page(ctx, page, true)
}

func (l *List[E]) page(ctx context.Context, page int, reverse bool) *Paged[E] {
	if l.key == "" {
		return &Paged[E]{Pagination: paginate(page, 0)}
	}

	l.store.locks.rlock(l.key)
	defer l.store.locks.runlock(l.key)

	meta, ok, _ := l.readMeta(ctx)
	if !ok {
		return &Paged[E]{Pagination: paginate(page, 0)}
	}

	total := meta.TotalPages
	physical := page
	if reverse {
		physical = total - page + 1
	}
	if physical < 1 || physical > total {
		return &Paged[E]{Pagination: paginate(page, total)}
	}

	items, err := l.readPage(ctx, physical)
	if err != nil {
		items = nil
	}
	return &Paged[E]{Items: items, Pagination: paginate(page, total)}
}

// Remove deletes the most recently appended element satisfying pred,
// scanning pages from the newest backwards and within a page from the end.
// Only the modified page and the metadata record are rewritten; a page may
// be left short, or even empty, in place. Reports whether a removal
// occurred.
func (l *List[E]) Remove(ctx context.Context, pred func(E) bool) bool {
	if l.key == "" {
		return false
	}
	if pred == nil {
		l.store.logf("error", ctx, "List %s remove: %v", l.key, ErrNilPredicate)
		return false
	}

	l.store.locks.lock(l.key)
	defer l.store.locks.unlock(l.key)

	meta, ok, _ := l.readMeta(ctx)
	if !ok {
		return false
	}

	for p := meta.TotalPages; p >= 1; p-- {
		page, err := l.readPage(ctx, p)
		if err != nil {
			continue
		}
		for i := len(page) - 1; i >= 0; i-- {
			if !pred(page[i]) {
				continue
			}
			page = append(page[:i], page[i+1:]...)
			if err := l.writePage(ctx, p, page); err != nil {
				return false
			}
			if meta.ItemCount > 0 {
				meta.ItemCount--
			}
			if err := l.writeMeta(ctx, meta); err != nil {
				return false
			}
			l.store.notify(l.key)
			return true
		}
	}
	return false
}

// Meta returns the bookkeeping record of the list, or ErrNotFound when the
// key is absent.
func (l *List[E]) Meta(ctx context.Context) (Meta, error) {
	if l.key == "" {
		return Meta{}, ErrEmptyKey
	}

	l.store.locks.rlock(l.key)
	defer l.store.locks.runlock(l.key)

	meta, ok, err := l.readMeta(ctx)
	if err != nil {
		return Meta{}, err
	}
	if !ok {
		return Meta{}, ErrNotFound
	}
	return meta, nil
}

// Len returns the tracked item count, or 0 for an absent key. The count is
// approximate after evictions; see Meta.
func (l *List[E]) Len(ctx context.Context) int {
	meta, err := l.Meta(ctx)
	if err != nil {
		return 0
	}
	return meta.ItemCount
}

// readMeta loads the bookkeeping record. ok is false when the key is
// absent; err is non-nil only for real I/O or decode failures, which are
// reported before returning.
func (l *List[E]) readMeta(ctx context.Context) (Meta, bool, error) {
	data, err := l.store.driver.Read(ctx, metaKey(l.key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Meta{}, false, nil
		}
		l.store.report(ctx, err, "List %s read meta failed", l.key)
		return Meta{}, false, err
	}

	var m Meta
	if err := l.store.codec.Decode(data, &m); err != nil {
		l.store.report(ctx, err, "List %s decode meta failed", l.key)
		return Meta{}, false, err
	}
	return m, true, nil
}

func (l *List[E]) writeMeta(ctx context.Context, m Meta) error {
	data, err := l.store.codec.Encode(m)
	if err != nil {
		l.store.report(ctx, err, "List %s encode meta failed", l.key)
		return err
	}
	if err := l.store.driver.Write(ctx, metaKey(l.key), data); err != nil {
		l.store.report(ctx, err, "List %s write meta failed", l.key)
		return err
	}
	return nil
}

func (l *List[E]) readPage(ctx context.Context, n int) ([]E, error) {
	data, err := l.store.driver.Read(ctx, pageKey(l.key, n))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.store.report(ctx, err, "List %s read page %d failed", l.key, n)
		}
		return nil, err
	}

	var page []E
	if err := l.store.codec.Decode(data, &page); err != nil {
		l.store.report(ctx, err, "List %s decode page %d failed", l.key, n)
		return nil, err
	}
	return page, nil
}

func (l *List[E]) writePage(ctx context.Context, n int, items []E) error {
	if items == nil {
		items = []E{}
	}
	data, err := l.store.codec.Encode(items)
	if err != nil {
		l.store.report(ctx, err, "List %s encode page %d failed", l.key, n)
		return err
	}
	if err := l.store.driver.Write(ctx, pageKey(l.key, n), data); err != nil {
		l.store.report(ctx, err, "List %s write page %d failed", l.key, n)
		return err
	}
	return nil
}

// deleteStale removes the page record at n, ignoring absence.
func (l *List[E]) deleteStale(ctx context.Context, n int) {
	if err := l.store.driver.Delete(ctx, pageKey(l.key, n)); err != nil && !errors.Is(err, ErrNotFound) {
		l.store.report(ctx, err, "List %s delete stale page %d failed", l.key, n)
	}
}
