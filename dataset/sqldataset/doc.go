/*
Package sqldataset provides an implementation of the dataset.Dataset
interface backed by an SQL database through an adapter.

Subsetting a dataset of this package does not go through its samples:
the applying feature criteria are translated into conditions for the
WHERE clauses of the SQL statements the dataset statistics are
computed with, so counting, entropy and numeric summaries run on the
database.
*/
package sqldataset
