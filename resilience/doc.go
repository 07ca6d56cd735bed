// Package resilience provides fault-tolerance primitives used around the
// pipeline's external collaborator calls: context-aware retry with
// exponential backoff, and a circuit breaker that stops hammering a
// translation or synthesis service that keeps failing. Defaults are tuned
// for the pipeline's soft real-time budget, where a retry burned on a dead
// service is latency stolen from the utterance.
package resilience
