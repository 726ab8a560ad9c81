package trace

import "errors"

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer combines tracers. Disabled tracers are dropped and nested
// MultiTracers are flattened.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{level: level}
	for _, t := range tracers {
		switch t := t.(type) {
		case nil:
		case *MultiTracer:
			m.tracers = append(m.tracers, t.tracers...)
		default:
			if t.Enabled() {
				m.tracers = append(m.tracers, t)
			}
		}
	}
	return m
}

// Emit hands every tracer its own copy; each stamps its own Seq.
func (m *MultiTracer) Emit(ev *Event) {
	for _, t := range m.tracers {
		cp := *ev
		t.Emit(&cp)
	}
}

// Flush flushes every tracer and joins the errors.
func (m *MultiTracer) Flush() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer and joins the errors.
func (m *MultiTracer) Close() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m *MultiTracer) Level() Level  { return m.level }
func (m *MultiTracer) Enabled() bool { return m.level > LevelOff && len(m.tracers) > 0 }
