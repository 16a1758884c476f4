// Package services implements the query layer behind the dashboard pages.
//
// Every page is a pure function of the loaded datasets and a validated query:
//
//	svc := services.NewDashboardService(loader, middleware.NewValidator(), nil, logger, tel)
//	view, err := svc.RawData(ctx, services.RawDataQuery{Dataset: domain.DatasetSourceLevel, Carrier: "AA"})
//	overview, err := svc.Overview(ctx)
//	cmp, err := svc.LowestBrands(ctx, domain.DefaultComparisonQuery())
//
// Exports return a Download that is written on demand:
//
//	dl, err := svc.ExportLowestBrands(ctx, q, "xlsx")
//	_, err = dl.WriteTo(ctx, w)
//
// # Errors
//
// A failed load surfaces as ErrDataUnavailable, an unknown dataset as
// ErrUnknownDataset, a rejected query as ErrInvalidQuery and a format the view
// does not offer as ErrUnsupportedFormat. Each also wraps an APIError so the
// HTTP layer can render the right problem response.
//
// HealthService reports liveness, readiness (the datasets load) and build
// information.
package services
