// Package transcription defines the speech-to-text collaborator contract and
// common types for interacting with transcription backends. Concrete vendor
// clients register through the provider registry under their service name.
package transcription
