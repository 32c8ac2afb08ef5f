// Package repository provides a generic repository built on Bun for CRUD,
// filtered pagination, search, soft-delete restore, transactions, and upsert.
// Filters arrive as filter.Predicate trees and are translated once into the
// WHERE clause of the Bun query.
package repository
