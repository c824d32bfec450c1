// Package timeseries provides observation series, the aligned table and the
// transforms applied to its columns.
//
// # Aligning Series
//
// Independently fetched series are merged on the dates present in all of
// them:
//
//	table, err := timeseries.Align(m2, m1, currency)
//	// table.Len() == number of shared dates, ascending
//
// Dates absent from any input are dropped, never shifted. Observations whose
// value is NaN keep their row as an explicit missing value.
//
// # Time Index
//
// Each row gets an integer offset counting back from the latest observation:
//
//	idx, _ := timeseries.TimeIndex(table.Len()) // -N ... -1
//	table, _ = table.WithTimeIndex()            // appends column "t"
//
// A trend fitted on this index has its intercept at t = 0, the next period.
//
// # Transforms
//
//	logged, err := timeseries.Log(values) // DomainError on values <= 0
//	returns := timeseries.Diff(logged)    // returns[0] is NaN
//	back := timeseries.CumSum(logged[0], returns)
//
// # Loading from CSV
//
// FRED CSV downloads load directly:
//
//	series, err := timeseries.LoadCSV("M2SL.csv", "M2", nil)
package timeseries
