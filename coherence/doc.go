// Package coherence wires the streaming pipeline together: a real-time
// producer appends sample blocks into fixed-length per-channel segments, a
// background worker decomposes published segments into accumulated spectral
// statistics, and sinks pull read-only coherence snapshots.
//
// Both handoffs (segments in, snapshots out) run through the wait-free
// triple buffers of package atomicsync, so the producer path never blocks,
// locks or allocates. The worker is driven by the host: call Engine.Run on
// whatever goroutine (and at whatever priority) the host sees fit.
package coherence
