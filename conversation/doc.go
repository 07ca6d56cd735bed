// Package conversation gives translation calls short-term memory of the
// current exchange. Each conversation id owns a bounded history of
// (original, translated) pairs pruned by age and count; the rendered
// context is a chronologically ordered transcript handed to context-aware
// translation backends.
//
// Appends are serialized per conversation under the manager's mutex, so
// history reflects the order translations completed even when segments
// were processed concurrently. Pruning only ever removes entries, never
// reorders them.
package conversation
