// Package audit records admin actions into durable storage.
//
// A Logger enriches events with actor, request ID, and client IP pulled
// from the request context via configurable extractors, then hands them to
// a Storage implementation. The Postgres storage writes one row per event;
// tests swap in an in-memory fake.
//
// Audit writes are best-effort from the caller's perspective: handlers log
// the returned error but do not fail the request over it.
package audit
