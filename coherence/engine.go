package coherence

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-coherence/atomicsync"
	"github.com/cwbudde/algo-coherence/tfr"
)

// Option configures optional engine behavior.
type Option func(*Engine)

// WithLogger sets the logger for worker-side diagnostics. The producer path
// never logs.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine owns the full streaming pipeline: the segment triple buffer filled
// by the producer, the spectral statistics accumulated by the worker, and
// the snapshot triple buffer drained by sinks.
type Engine struct {
	settings Settings
	groups   *groups
	log      logrus.FieldLogger

	segments  *atomicsync.Shared[segment]
	snapshots *atomicsync.Shared[Snapshot]
	tf        *tfr.TFR

	running atomic.Bool

	// Worker-local counters; read by Reconfigure only while stopped.
	generation uint64
	nSegments  uint64
}

// NewEngine validates the settings and builds the pipeline. Channels whose
// configured rate differs from the nominal sample rate are excluded with a
// warning; construction fails only if an entire group becomes empty.
func NewEngine(settings Settings, opts ...Option) (*Engine, error) {
	e := &Engine{
		settings: settings,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if err := e.configure(settings); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) configure(settings Settings) error {
	if len(settings.Group1) == 0 || len(settings.Group2) == 0 {
		return fmt.Errorf("%w: both groups need at least one channel", ErrBadSettings)
	}
	if settings.Interval < 0 {
		return fmt.Errorf("%w: negative interval", ErrBadSettings)
	}

	exclude := make(map[int]bool)
	for ch, rate := range settings.ChannelRates {
		if rate != settings.SampleRate {
			exclude[ch] = true
			e.log.WithFields(logrus.Fields{
				"channel": ch,
				"rate":    rate,
				"nominal": settings.SampleRate,
			}).Warn("coherence: channel excluded, incompatible sample rate")
		}
	}

	g, err := newGroups(settings.Group1, settings.Group2, exclude)
	if err != nil {
		return err
	}

	tf, err := tfr.New(settings.tfrParams(len(g.group1), len(g.group2)),
		tfr.WithLogger(e.log))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSettings, err)
	}

	e.settings = settings
	e.groups = g
	e.tf = tf
	e.generation = 0
	e.nSegments = 0

	e.segments = atomicsync.New(newSegmentSlot(g.nChannels(), tf.SegmentSamples()))
	e.snapshots = atomicsync.New(func() Snapshot {
		return newSnapshotSlot(tf.Frequencies(), g.pairs())
	})

	e.log.WithFields(logrus.Fields{
		"channels": g.nChannels(),
		"pairs":    tf.NCombinations(),
		"freqs":    tf.NFreqs(),
		"times":    tf.NTimes(),
	}).Info("coherence: engine configured")

	return nil
}

// Reconfigure tears down all accumulated state and rebuilds the pipeline
// with new settings. It must only be called while the worker is stopped and
// all producer and sink handles are released; otherwise it fails without
// touching the engine.
func (e *Engine) Reconfigure(settings Settings) error {
	if e.running.Load() {
		return ErrRunning
	}

	// Exclusive registration on both buffers proves no handles are live.
	exSeg, err := e.segments.AcquireExclusive()
	if err != nil {
		return fmt.Errorf("coherence: segment buffer busy: %w", err)
	}
	exSeg.Release()

	exSnap, err := e.snapshots.AcquireExclusive()
	if err != nil {
		return fmt.Errorf("coherence: snapshot buffer busy: %w", err)
	}
	exSnap.Release()

	return e.configure(settings)
}

// Settings returns the active configuration.
func (e *Engine) Settings() Settings { return e.settings }

// Frequencies returns the frequency grid in Hz.
func (e *Engine) Frequencies() []float64 { return e.tf.Frequencies() }

// Pairs returns the (group 1, group 2) combinations in snapshot order.
func (e *Engine) Pairs() []Pair { return e.groups.pairs() }

// SegmentSamples returns the per-channel segment length in samples.
func (e *Engine) SegmentSamples() int { return e.tf.SegmentSamples() }

// Snapshots registers a sink. Only one sink may hold a reader at a time.
func (e *Engine) Snapshots() (*atomicsync.Reader[Snapshot], error) {
	return e.snapshots.AcquireReader()
}

// Run executes the analysis worker until ctx is cancelled. The host decides
// which goroutine (and priority, where applicable) runs it. Cancellation is
// cooperative: the flag is checked once per sleep tick and once per epoch,
// and an in-flight segment is abandoned without publishing.
//
// Run never returns an error across the producer/consumer boundary; the
// worst outcome of an analysis failure is that no new snapshot appears.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	reader, err := e.segments.AcquireReader()
	if err != nil {
		return err
	}
	defer reader.Release()

	writer, err := e.snapshots.AcquireWriter()
	if err != nil {
		return err
	}
	defer writer.Release()

	const pollTick = time.Millisecond
	ticker := time.NewTicker(pollTick)
	defer ticker.Stop()

	e.log.Info("coherence: worker started")
	defer e.log.Info("coherence: worker stopped")

	var lastCompute time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		// Soft budget: a segment must be ready and the recalculation
		// interval elapsed, whichever is later.
		if !reader.HasUpdate() {
			continue
		}
		if e.settings.Interval > 0 && time.Since(lastCompute) < e.settings.Interval {
			continue
		}

		reader.Pull()
		if ctx.Err() != nil {
			// Abandon the in-flight segment without publishing.
			return nil
		}

		e.processSegment(reader.Get(), writer)
		lastCompute = time.Now()
	}
}

// Running reports whether the worker loop is active.
func (e *Engine) Running() bool { return e.running.Load() }

func (e *Engine) processSegment(seg *segment, writer *atomicsync.Writer[Snapshot]) {
	ok := true
	for i := range seg.data {
		if err := e.tf.AddChannel(i, seg.data[i]); err != nil {
			// Cannot happen with slots sized at configuration time, but an
			// analysis failure must never cross the boundary: skip the
			// publish, keep the worker alive.
			e.log.WithError(err).WithField("channel", i).
				Warn("coherence: segment dropped")
			ok = false
			break
		}
	}

	// Clears the per-segment spectra even after a partial add.
	e.tf.FinishSegment()
	if !ok {
		return
	}

	e.nSegments++
	mean, std := e.tf.Coherence()

	snap := writer.Get()
	snap.ID = uuid.New()
	e.generation++
	snap.Generation = e.generation
	snap.Segments = e.nSegments
	for p := range mean {
		copy(snap.Mean[p], mean[p])
		copy(snap.Std[p], std[p])
	}
	writer.Publish()
}
