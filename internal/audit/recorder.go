// Package audit appends authentication outcomes to ClickHouse. Events are
// buffered and flushed in batches; the recorder degrades to dropping events
// rather than blocking the login path.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"campaign-access-service/internal/client"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/util"
)

const insertLoginEvents = `
    INSERT INTO login_events (event_id, event_type, login_id, ip_address, attempts, event_time, details)`

// Recorder batches security events into the login_events table.
type Recorder struct {
	clickhouse *client.ClickHouseClient
	logger     *zap.Logger

	events    chan model.SecurityEvent
	batchSize int
	interval  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewRecorder(clickhouse *client.ClickHouseClient, logger *zap.Logger) *Recorder {
	r := &Recorder{
		clickhouse: clickhouse,
		logger:     logger,
		events:     make(chan model.SecurityEvent, 1024),
		batchSize:  200,
		interval:   5 * time.Second,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an event. Never blocks: a full buffer drops the event with a
// warning instead of stalling authentication.
func (r *Recorder) Record(event model.SecurityEvent) {
	select {
	case r.events <- event:
	default:
		r.logger.Warn("audit buffer full, dropping event",
			util.String("event_type", event.EventType),
			util.String("login_id", event.LoginID))
	}
}

// Close flushes pending events and stops the background worker.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	batch := make([]model.SecurityEvent, 0, r.batchSize)
	for {
		select {
		case ev := <-r.events:
			batch = append(batch, ev)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
			// Drain whatever is queued before exiting.
			for {
				select {
				case ev := <-r.events:
					batch = append(batch, ev)
				default:
					if len(batch) > 0 {
						r.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (r *Recorder) flush(batch []model.SecurityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows := make([][]interface{}, 0, len(batch))
	for _, ev := range batch {
		rows = append(rows, []interface{}{
			ev.EventID, ev.EventType, ev.LoginID, ev.IPAddress,
			int32(ev.Attempts), ev.EventTime, ev.Details,
		})
	}

	if err := r.clickhouse.BatchInsert(ctx, insertLoginEvents, rows); err != nil {
		r.logger.Error("failed to flush audit batch",
			util.Int("events", len(batch)),
			util.ErrorField(err))
		return
	}

	r.logger.Debug("audit batch flushed", util.Int("events", len(batch)))
}
