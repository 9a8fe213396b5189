// Package services implements the read-only logic behind the table viewer.
// Handlers in internal/transport/http stay thin: they parse the request and
// render what a service returns. Services hold the loaded table and answer
// column, row and health queries against it.
package services
