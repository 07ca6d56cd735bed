// Package observability wires OpenTelemetry metrics for the translation
// pipeline. InitMeter bootstraps an OTLP meter provider; PipelineMetrics
// bundles the pipeline's instruments. A nil *PipelineMetrics is a valid
// no-op, so callers never need to guard metric calls.
package observability
