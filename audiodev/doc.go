// Package audiodev defines the device enumeration contract used by the
// capture module to resolve a device id to a live sample stream. OS-level
// audio tooling implements this interface outside the pipeline core.
package audiodev
