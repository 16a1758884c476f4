// Package dataprocessing loads the three fare family datasets and derives every
// view the dashboard shows from them.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Loader: reads the tab-separated files, types them against their schemas
// and caches the result by content fingerprint
// 2. Explorer: per-dataset equality filters and filter options
// 3. Summarizer: group sums, shares, rates and the price histogram
// 4. Reconciler: the per-airline lowest brand comparison
//
// Everything except the Loader is a pure function of an immutable
// *domain.Datasets handle and is safe for concurrent use.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.Files{
//	    AirlineLevel: "data/george_airline_level.csv",
//	    SourceLevel:  "data/george_airline_source_level.csv",
//	    Detections:   "data/teo_airline_source.csv",
//	}, logger, telemetry)
//	ds, err := loader.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	rows := dataprocessing.NewReconciler(logger, telemetry).Reconcile(ctx, ds)
//	rows = dataprocessing.ApplyQuery(rows, domain.DefaultComparisonQuery())
package dataprocessing
