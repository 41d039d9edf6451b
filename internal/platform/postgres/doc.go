// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store. All stores accept a store.DBTX so
// they run equally on a *sql.DB or inside a transaction, and map driver
// errors to the store package's sentinel errors.
package postgres
