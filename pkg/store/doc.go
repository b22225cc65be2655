// Package store persists shape trees page by page.
//
// # Overview
//
// A page is saved as a [Document]: its shapes in depth-first pre-order (each
// parent before its children, siblings in z-order) plus the geometry of its
// connectors. Sibling order in the document is the literal back-to-front
// rendering order, so a container stored ahead of its members stays behind
// them after a reload.
//
//	doc := store.Encode("page-1", tree, connectors)
//	tree, connectors, err := store.Decode(doc)
//
// # Backends
//
// Every backend implements [Store]:
//
//   - [MemoryStore]: in-process map, for tests and the default server
//   - [FileStore]: one JSON file per page under a directory, for the CLI
//   - [RedisStore]: JSON values in Redis with a page index set
//   - [MongoStore]: one BSON document per page, keyed by page id
//
// [Open] builds the backend named in a [config.Store] and wraps it with
// [Instrument] so loads and saves reach the observability hooks.
//
// # Errors
//
// A missing page is reported as NOT_FOUND. Backend failures are wrapped as
// STORE_ERROR. A document that does not describe a valid tree fails to
// decode with the engine's own error codes.
package store
