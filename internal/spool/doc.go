// Package spool implements a maildir-style spool directory: a crash-safe,
// multi-producer/multi-consumer work queue built entirely out of filesystem
// primitives, with no external database or lock manager. Producers deposit
// opaque byte payloads; consumers atomically claim one payload at a time,
// and may finish it or return it to the queue. The queue survives process
// crashes and concurrent access from multiple processes sharing the same
// directory tree.
//
// # On-Disk Layout
//
// A spool root contains exactly four subdirectories, one per element state:
//
//	<root>/tmp/  -- elements being written by a producer
//	<root>/new/  -- committed elements waiting for a consumer
//	<root>/wip/  -- elements claimed by a consumer
//	<root>/cur/  -- elements a consumer has finished
//
// Each element is a single regular file whose name is its [Key] (a
// 64-character lowercase hex string for generated keys) and whose content
// is the payload bytes, unmodified. There are no sidecar metadata files;
// the filesystem is the single source of truth, which is what allows
// independent processes to cooperate without shared memory.
//
// # Element Lifecycle
//
// A producer calls [Spool.Add], writes the payload into the returned
// transaction's file, and calls [Spool.Commit] (tmp -> new). A consumer
// calls [Spool.Pick], which atomically claims one element (new -> wip),
// processes it, and then calls [Spool.Commit] (wip -> cur) or
// [Spool.Rollback] (wip -> new, retry later). Rolling back a producer
// transaction deletes the element outright.
//
// Elements only ever become visible in new/ via an atomic rename of a fully
// written file, so a consumer never observes a partial payload. Claiming
// uses link(2) rather than rename(2): link fails if the destination name
// already exists, so when several consumers race for the same element
// exactly one wins and the others move on to the next entry.
//
// # Main Types
//
//   - [Key]: the unique filename assigned to an element
//   - [Generator]: collision-resistant key generation (HMAC-SHA256 keystream)
//   - [Spool]: the open spool directory and its transition engine
//   - [Txn]: one element in flight between states
//   - [Event]: a change notification delivered by [Spool.Watch]
//
// # Security
//
// All operations on spool internals are expressed relative to the spool's
// own directory file descriptors and reject symbolic links at the final
// path component. An attacker who can plant a symlink named tmp, new, wip
// or cur inside the spool root cannot redirect spool traffic elsewhere.
// Generated keys carry no host-identifying information (no hostname, PID,
// or timestamp), unlike classic Maildir names.
//
// # Thread Safety
//
// A [Spool] is safe for concurrent use from multiple goroutines and its
// on-disk state is safe for concurrent use from multiple processes: every
// operation is an independently parameterized syscall against the shared
// directory descriptors, and the directory stream used by Pick is private
// to each call. A [Txn] belongs to a single caller and is not synchronized.
package spool
