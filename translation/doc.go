// Package translation defines the translation collaborator contract and the
// normalized request/result types shared by the cache, the orchestrator and
// the quality assessor. Vendor clients (deepl, gpt4o, google, azure) register
// under their service name; the orchestrator walks them in configured
// ranking order when a service fails.
package translation
