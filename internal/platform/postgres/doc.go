// Package postgres provides PostgreSQL implementations of the store
// interfaces. Stores accept a store.DBTX so the same code runs against a
// *sql.DB or inside a *sql.Tx, and translate driver errors into the store
// package's sentinel errors.
package postgres
