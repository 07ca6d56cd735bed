// Package quality scores translation attempts so fallback candidates can be
// compared. Scores start from a per-service baseline (services are not
// assumed equal), get small documented adjustments for input
// characteristics, and fan out into weighted sub-scores. The baselines are
// heuristics, not measured accuracy: the only contract is that a higher
// score is preferred and ties fall back to the configured service ranking.
//
// Scoring is deterministic by default. The optional jitter source exists
// for tie-breaking experiments and must be injected explicitly, so tests
// never see randomness unless they ask for it.
package quality
