// Package dataprocessing loads the MTA daily ridership CSV and turns it into the
// tables and statistics the dashboard renders.
//
// # Architecture
//
// The package has two parts:
//
// 1. Loader: reads the CSV once at startup into an immutable Dataset
// 2. Pipeline: Compute filters, resamples and aggregates records for one FilterState
//
// # Usage
//
//	ds, err := dataprocessing.NewLoader(logger).Load(ctx, "MTA_Daily_Ridership.csv")
//	if err != nil {
//	    log.Fatal(err) // always a *LoadError
//	}
//	result := ds.Compute(ds.DefaultFilter())
//
// # Data Flow
//
//	CSV → Loader → Dataset → Compute(FilterState) → PipelineResult
//
// # Resampling
//
// Absolute counts are summed per bucket and percentages are averaged per bucket.
// Buckets are labelled by their last calendar day (see BucketEnd) and only buckets
// that hold at least one record are emitted.
//
// # Error Handling
//
// Loading returns *LoadError wrapping one of the package sentinels. Compute has no
// error return: empty ranges and empty mode selections produce zeroed output.
package dataprocessing
