package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultFlushInterval = 100 * time.Millisecond

// SaveQueue writes the store behind the request path. Schedule marks the
// store dirty; the first mark opens a flush window and every further mark
// inside it is absorbed. When the window closes the current snapshot is
// saved, so only the latest state reaches the persister.
type SaveQueue struct {
	store     *Store
	persister Persister
	interval  time.Duration
	log       *zap.Logger
	metrics   *Metrics

	// saveMu serializes saves between the loop and Flush.
	saveMu sync.Mutex

	mu    sync.Mutex
	dirty bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewSaveQueue(st *Store, p Persister, interval time.Duration, log *zap.Logger, m *Metrics) *SaveQueue {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	q := &SaveQueue{
		store:     st,
		persister: p,
		interval:  interval,
		log:       log,
		metrics:   m,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *SaveQueue) Schedule() {
	q.mu.Lock()
	q.dirty = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Flush saves the current snapshot now if anything is pending. A failed
// save leaves the queue dirty.
func (q *SaveQueue) Flush(ctx context.Context) error {
	q.saveMu.Lock()
	defer q.saveMu.Unlock()

	q.mu.Lock()
	dirty := q.dirty
	q.dirty = false
	q.mu.Unlock()

	if !dirty {
		return nil
	}

	products := q.store.List()
	err := q.persister.Save(ctx, products)
	q.metrics.observeSave(err)
	if err != nil {
		// Stay dirty so the next window, or Close, writes the snapshot again.
		q.mu.Lock()
		q.dirty = true
		q.mu.Unlock()

		q.log.Error("save products failed", zap.Error(err), zap.Int("count", len(products)))
		return err
	}

	q.log.Debug("products saved", zap.Int("count", len(products)))
	return nil
}

// Close stops the background writer and performs a final synchronous flush.
func (q *SaveQueue) Close(ctx context.Context) error {
	q.once.Do(func() { close(q.stop) })
	<-q.done
	return q.Flush(ctx)
}

func (q *SaveQueue) loop() {
	defer close(q.done)

	timer := time.NewTimer(q.interval)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-q.stop:
			timer.Stop()
			return
		case <-q.wake:
		}

		timer.Reset(q.interval)
		select {
		case <-q.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		_ = q.Flush(ctx)
		cancel()
	}
}
