// Package synthesis defines the text-to-speech collaborator contract.
// Vendor clients register under their service name through the provider
// registry; the orchestrator calls whichever backend the session selected.
package synthesis
