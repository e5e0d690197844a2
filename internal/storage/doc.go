// Package storage keeps the delivery history in SQLite.
//
// Only history lives here. Scheduled jobs are volatile by design and are
// never persisted; this store is an audit log for the /history command and
// for operators, not a job queue.
package storage
