// Package analysis is the tabular aggregator: pure functions that derive
// statistics, group reductions, correlations, trends and comparisons from
// an immutable table. Nothing here caches or mutates its input; calling an
// operation twice on the same table yields identical results.
package analysis
