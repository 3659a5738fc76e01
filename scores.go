package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type scoreEvent struct {
	nickname string
	kill     bool
}

// ScoreWriter batches kill and death tallies from the rooms and writes them
// to the database in the background. It never blocks a room tick.
type ScoreWriter struct {
	db       *DB
	events   chan scoreEvent
	stop     chan struct{}
	interval time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
	once     sync.Once
}

// NewScoreWriter creates and starts the background writer. A nil db keeps
// the writer running but discards the batches.
func NewScoreWriter(db *DB, interval time.Duration, log *zap.Logger) *ScoreWriter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	w := &ScoreWriter{
		db:       db,
		events:   make(chan scoreEvent, 1024),
		stop:     make(chan struct{}),
		interval: interval,
		log:      log,
	}
	w.wg.Add(1)
	go w.writer()
	return w
}

// AddKill credits a kill to nickname
func (w *ScoreWriter) AddKill(nickname string) { w.track(nickname, true) }

// AddDeath credits a death to nickname
func (w *ScoreWriter) AddDeath(nickname string) { w.track(nickname, false) }

func (w *ScoreWriter) track(nickname string, kill bool) {
	if nickname == "" {
		return
	}
	select {
	case w.events <- scoreEvent{nickname: nickname, kill: kill}:
	default:
		w.log.Warn("score queue full, dropping tally", zap.String("nickname", nickname))
	}
}

// Close flushes the pending tallies and stops the writer
func (w *ScoreWriter) Close() {
	w.once.Do(func() {
		close(w.stop)
		w.wg.Wait()
	})
}

func (w *ScoreWriter) writer() {
	defer w.wg.Done()

	batch := make(map[string]Tally)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-w.events:
			batch = w.add(batch, evt)
		case <-ticker.C:
			batch = w.flush(batch)
		case <-w.stop:
			for {
				select {
				case evt := <-w.events:
					batch = w.add(batch, evt)
				default:
					w.flush(batch)
					return
				}
			}
		}
	}
}

func (w *ScoreWriter) add(batch map[string]Tally, evt scoreEvent) map[string]Tally {
	t := batch[evt.nickname]
	if evt.kill {
		t.Kills++
	} else {
		t.Deaths++
	}
	batch[evt.nickname] = t
	return batch
}

func (w *ScoreWriter) flush(batch map[string]Tally) map[string]Tally {
	if len(batch) == 0 {
		return batch
	}
	if w.db != nil {
		if err := w.db.ApplyTallies(batch); err != nil {
			w.log.Error("score flush failed", zap.Int("nicknames", len(batch)), zap.Error(err))
			return batch
		}
	}
	return make(map[string]Tally)
}
