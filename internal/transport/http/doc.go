// Package http implements the HTTP handlers of the brands comparison service.
//
// Handlers stay thin: they parse query parameters, call the dashboard
// service and render JSON through go-chi/render. Every error goes through
// the shared ErrorHandler and reaches the client as RFC 7807 problem details.
//
// # Routes
//
//	GET /api/datasets                         dataset catalogue
//	GET /api/datasets/{dataset}               filtered rows (carrier, source, airline)
//	GET /api/datasets/{dataset}/export        download (format=csv|xlsx)
//	GET /api/overview                         headline metrics and summaries
//	GET /api/lowest-brands                    comparison (all, airline, sort, order)
//	GET /api/lowest-brands/export             download (format=csv|xlsx|pdf)
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//	GET /                                     HTML dashboard (page=raw|overview|lowest)
//
// Downloads carry a Content-Disposition attachment header and an ETag equal
// to the quoted dataset fingerprint; a matching If-None-Match gets 304.
package http
