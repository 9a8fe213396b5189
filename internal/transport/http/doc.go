// Package http implements the HTTP handlers of the table viewer.
//
// Handlers are thin: they parse query parameters, delegate to a service from
// internal/services and render the result with go-chi/render. Every failure
// goes through errors.ErrorHandler so clients always receive an RFC 7807
// problem document.
//
//	GET /api/table/columns   column names, kinds and missing counts
//	GET /api/table/rows      one page of rows, optionally for a column subset
//	GET /healthz             liveness and the file being served
package http
