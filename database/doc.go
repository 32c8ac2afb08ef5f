// Package database provides connection management, versioned migrations,
// foreign key handling, configuration types, query logging, health checks
// and error classification built on top of Bun.
package database
