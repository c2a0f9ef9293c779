// Package resource maps named mining modes to CPU budgets.
//
// Thread counts are always derived from a live CPU-unit detection at start
// time; nothing is cached across starts, so a topology change within a
// session is picked up by the next start.
package resource
