// Package driven defines the outbound ports of the sync engine: the
// interfaces the core services depend on for change extraction,
// enrichment, index loading and watermark persistence. Adapters under
// internal/adapters/driven implement them.
package driven
