// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in internal/store. It opens the pgx-backed database/sql
// pool, applies the embedded goose migrations and maps rows to domain
// entities and driver errors to store errors.
package postgres
