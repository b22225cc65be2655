// Package api serves pages over HTTP.
//
// # Overview
//
// The server is a host application for the geometry engine. Every request
// that touches a page takes that page's lock, loads it from the store, runs
// the edit and saves it back, so edits to one page are applied one at a time
// while different pages proceed in parallel.
//
//	srv := api.NewServer(store.NewMemoryStore(), api.WithLogger(logger))
//	http.ListenAndServe(":8080", srv.Handler())
//
// # Routes
//
//	GET    /healthz
//	GET    /pages
//	GET    /pages/{page}
//	PUT    /pages/{page}
//	DELETE /pages/{page}
//	POST   /pages/{page}/shapes
//	PATCH  /pages/{page}/shapes/{shape}
//	GET    /pages/{page}/shapes/{shape}/absolute
//	POST   /pages/{page}/connectors
//	PUT    /pages/{page}/containers/{shape}
//	POST   /pages/{page}/containers/{shape}/members
//	POST   /pages/{page}/layout
//
// # Errors
//
// Failures are returned as {"code": ..., "message": ...} with the HTTP status
// chosen by [errors.HTTPStatus].
package api
