// Package api hosts the HTTP server for the mission site. Notable routes:
//   - GET /sitemap.xml builds the sitemap from the live collection on each request.
//   - GET /robots.txt serves the crawler directives.
//   - GET /api/jobs and /api/jobs/{slug} serve the cached interactive job list.
//   - GET /healthz and /readyz for probes, /metrics for Prometheus scraping.
package api
