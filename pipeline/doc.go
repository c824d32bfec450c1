// Package pipeline runs the full money-supply analysis over a set of named
// series: inner-join alignment, the level/log/return trend chain, z-score
// outlier counts on the return residuals, and start-to-end growth ratios.
package pipeline
