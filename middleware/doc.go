// Package middleware provides composable middleware for enrichment
// execution. Middleware wraps the analysis call synchronously and can
// modify execution (recover from panics, enforce deadlines, log, record
// metrics).
package middleware
