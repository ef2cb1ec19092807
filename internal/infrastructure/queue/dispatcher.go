package queue

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/api/metrics"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes notification writes to a fixed set of workers using
// consistent hashing on the recipient id, guaranteeing per-user ordering.
// Order operations enqueue and move on; persistence happens on the worker.
type Dispatcher struct {
	workers []chan ports.NotificationInput
	service ports.NotificationService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.NotificationInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify sends a notification to the worker responsible for its recipient.
// Blocks only when the shard's buffer is full.
func (d *Dispatcher) Notify(in ports.NotificationInput) {
	i := d.shardIndex(in.UserID)
	d.workers[i] <- in
	metrics.NotificationsQueueDepth.WithLabelValues(fmt.Sprint(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotificationInput) {
	label := fmt.Sprint(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			if _, err := d.service.Create(ctx, in); err != nil {
				d.log.Error().Err(err).
					Str("user_id", in.UserID).
					Int("worker_id", id).
					Msg("notification write failed")
			}
			metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		}
	}
}
