// Package ingestion loads issue, pull request and discussion payloads into
// the record store.
//
// Each source kind has its own JSON shape. Payloads are decoded, validated
// and normalized to core.Record concurrently on a worker pool, so missing
// fields (reactions on pull requests, a category on issues) get their
// defaults here and nowhere else. Normalized records are then written in
// batches, with each batch retried with exponential backoff.
//
// Payloads that fail to decode or validate are skipped with a warning and
// counted in Stats.
package ingestion
