// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the embedded goose schema and the mapping of driver errors to
// store errors. Connections come from database/sql with the pgx stdlib
// driver.
package postgres
