// Package integration is the registry that decides which feature modules
// run. Integrations declare themselves with Register at startup; LoadAndRun
// reconciles the declared set against the persisted per-integration
// enablement flags in the settings store and invokes each enabled
// activation exactly once.
//
// Reconciliation keeps the store and the compiled-in set aligned: unseen
// integrations get their default flag persisted, and flags for modules that
// are no longer compiled in are pruned. Activations are isolated from each
// other; one failing or panicking never stops the rest.
package integration
