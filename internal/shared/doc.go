// Package shared holds helpers used across the dashboard packages that do not belong
// to any single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, an slog.Handler that captures records for assertions
//   - deterministic daily ridership fixtures, in memory or written as CSV
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteRidershipCSV(t, testutil.DailyRecords(testutil.FixtureStart, 14))
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing in this package may import the transport or application layers.
package shared
