// Package internal documents the refunds internals.
//
// The internal tree is organized by responsibility:
// - domain/refunds: normalization, deadline validation and batch processing
// - domain/ids: batch and record identifiers
// - config: environment, logging and policy tables
// - metrics, telemetry, audit: observers wired into batch runs
//
// Code in internal/ is not meant for external import.
package internal
