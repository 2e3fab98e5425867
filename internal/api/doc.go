// Package api hosts the HTTP server, middleware, and JSON handlers for the
// article service. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /api/parse to fetch a URL and extract its title, date and body.
//   - POST /api/translate to translate extracted text when a model is configured.
package api
