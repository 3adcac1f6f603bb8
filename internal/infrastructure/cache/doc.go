// Package cache holds the operation-key stores that make debt submissions
// idempotent: a Redis store for multi-instance deployments and an in-memory
// store for a single process.
package cache
