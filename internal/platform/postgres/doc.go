// Package postgres provides PostgreSQL implementations of the store
// interfaces. Every store works against store.DBTX, so the same code runs
// on a plain connection pool or inside a transaction handed down by the
// service layer.
package postgres
