// Package ingestion orchestrates call ingestion: list calls from the source,
// normalize and analyze each transcript, embed the derived texts, and persist
// the call, segment, and feature-request rows.
//
// Calls are processed sequentially. A failure on one call is logged and does
// not abort the rest of the batch.
package ingestion
