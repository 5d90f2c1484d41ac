// Package api exposes loop closure over HTTP with gin.
//
// Routes:
//
//	GET  /health           liveness
//	GET  /tables           tables held in memory
//	GET  /tables/:length   one table's summary and bin populations
//	POST /closures         close a gap between two anchors
//
// Every response carries an X-Request-ID header; error bodies repeat it as
// request_id.
package api
