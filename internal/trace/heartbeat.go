package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a KindHeartbeat event every interval with the Go runtime's
// memory figures, so a trace of a long collection or scan shows both
// progress and memory growth. A stalled run shows heartbeats without span
// ends.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// StartHeartbeat starts emitting. It returns nil when t is disabled or
// interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   t,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.stopped)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			beat++
			h.tracer.Emit(heartbeatEvent(now, beat))
		}
	}
}

func heartbeatEvent(now time.Time, beat uint64) *Event {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		GID:    goroutineID(),
		Name:   "heartbeat",
		Detail: "#" + strconv.FormatUint(beat, 10),
		Extra: map[string]string{
			"heap_alloc": strconv.FormatUint(ms.HeapAlloc, 10),
			"heap_objs":  strconv.FormatUint(ms.HeapObjects, 10),
			"num_gc":     strconv.FormatUint(uint64(ms.NumGC), 10),
			"goroutines": strconv.Itoa(runtime.NumGoroutine()),
		},
	}
}

// Stop ends the heartbeat and waits for its goroutine. It is safe to call
// more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.stopped
}
