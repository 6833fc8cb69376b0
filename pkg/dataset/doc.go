/*
Package dataset loads a small tabular dataset of named records with numeric
measures and indexes it for lookup by URL slug and for cyclic previous/next
navigation.

Records come from a delimited text file (see LoadCSV) or, as a fallback, from
a read-only SQL table (see Store). Loading is tolerant: short rows are skipped
and unparseable numbers become NaN. Once built, an Index is immutable and safe
for concurrent use.
*/
package dataset
