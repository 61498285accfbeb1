package spool

import "os"

// Txn represents exactly one spool element while it is being produced or
// consumed. A transaction is created by [Spool.Add] (state tmp) or
// [Spool.Pick] (state wip) and consumed by [Spool.Commit] or
// [Spool.Rollback]. It belongs to a single caller and is not safe for
// concurrent use.
//
// The transaction owns its key and open file until the caller explicitly
// takes one with TakeKey or TakeFile; after a take, the engine no longer
// closes that resource on the transaction's behalf.
type Txn struct {
	status Status
	key    Key
	file   *os.File
}

// Status returns the transaction's current lifecycle state.
func (t *Txn) Status() Status { return t.status }

// Key returns the element's key. The transaction retains ownership; use
// TakeKey to keep the key past Commit or Rollback.
func (t *Txn) Key() Key { return t.key }

// File returns the open handle to the element's content. It is non-nil
// only in the tmp and wip states.
func (t *Txn) File() *os.File { return t.file }

// TakeKey transfers ownership of the element's key to the caller and
// detaches it from the transaction. A detached transaction can no longer
// be committed or rolled back, so take the key only after the final
// transition (or when assuming responsibility for the directory entry
// yourself).
func (t *Txn) TakeKey() Key {
	key := t.key
	t.key = ""
	return key
}

// TakeFile transfers ownership of the element's open file to the caller,
// who becomes responsible for closing it. Returns nil if the transaction
// holds no file (or it was already taken).
func (t *Txn) TakeFile() *os.File {
	f := t.file
	t.file = nil
	return f
}

// release closes the transaction's file, if still owned, after a
// completed transition.
func (t *Txn) release() {
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
}
