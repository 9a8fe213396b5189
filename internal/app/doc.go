// Package app assembles the table viewer: it wires the loaded table into
// services, handlers and middleware, and owns the HTTP server lifecycle.
//
// Middleware order:
//
//	RequestID → RealIP → Telemetry → ErrorMiddleware → SecurityHeaders → RateLimiter
//
// Usage:
//
//	viewer, err := app.New(cfg, "data.csv", tel, logger)
//	if err != nil {
//	    return err
//	}
//	return viewer.Run(ctx)
//
// Run blocks until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts the server down within Viewer.ShutdownTimeout.
package app
