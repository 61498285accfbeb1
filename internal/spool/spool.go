package spool

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/spoolio/spoolio/internal/errors"
)

// Status is the lifecycle state of a spool element.
type Status int

const (
	// StatusTmp: the element is being written by a producer and is not
	// yet visible to consumers.
	StatusTmp Status = iota
	// StatusNew: the element is committed and waiting to be claimed.
	StatusNew
	// StatusWip: the element has been claimed by a consumer.
	StatusWip
	// StatusCur: the element has been processed.
	StatusCur
	// StatusFin: the element has left the spool and is owned entirely by
	// the caller; it has no backing directory entry.
	StatusFin
)

// String returns the state's subdirectory name, or "fin" for StatusFin.
func (s Status) String() string {
	switch s {
	case StatusTmp:
		return "tmp"
	case StatusNew:
		return "new"
	case StatusWip:
		return "wip"
	case StatusCur:
		return "cur"
	case StatusFin:
		return "fin"
	default:
		return "unknown"
	}
}

// stored reports whether elements in this state have a directory entry.
func (s Status) stored() bool {
	return s >= StatusTmp && s <= StatusCur
}

// subdirs lists the state directories in Status order (tmp, new, wip, cur).
var subdirs = [...]string{"tmp", "new", "wip", "cur"}

// Spool is an open spool directory: a root descriptor plus one descriptor
// per state subdirectory. All element operations are expressed relative to
// these descriptors and reject symlinks at the final path component, so a
// symlink planted inside the spool root cannot redirect spool traffic.
//
// A Spool is safe for concurrent use by multiple goroutines. Close
// releases the descriptors; transactions still outstanding at that point
// must not be used afterwards.
type Spool struct {
	path string
	root int
	dirs [len(subdirs)]int
}

const (
	// dirOpenFlags opens a subdirectory handle: directory-only and
	// symlink-rejecting at the final component.
	dirOpenFlags = unix.O_RDONLY | unix.O_DIRECTORY | unix.O_NOFOLLOW | unix.O_CLOEXEC

	// elementMode is the permission mode for newly created element files.
	elementMode = 0o600
)

// Open opens an existing directory as a spool, creating the four state
// subdirectories if they are missing. It fails if path does not exist or
// is not a directory.
func Open(path string) (*Spool, error) {
	return openSpool(path, 0o755)
}

// Create makes the spool root (and any missing parents) with the given
// permission mode, then opens it. Pre-existing directories are reused, so
// calling Create on a live spool is harmless.
func Create(path string, perm os.FileMode) (*Spool, error) {
	if err := os.MkdirAll(path, perm); err != nil {
		return nil, errors.NewSpoolError("create spool root", err).WithPath(path)
	}
	return openSpool(path, perm)
}

func openSpool(path string, perm os.FileMode) (*Spool, error) {
	root, err := unix.Open(path, dirOpenFlags, 0)
	if err != nil {
		if err == unix.ENOTDIR {
			return nil, errors.NewSpoolError("open spool root", errors.ErrNotDirectory).WithPath(path)
		}
		return nil, errors.NewSpoolError("open spool root", err).WithPath(path)
	}

	s := &Spool{path: path, root: root}
	for i, name := range subdirs {
		if err := unix.Mkdirat(root, name, uint32(perm.Perm())); err != nil && err != unix.EEXIST {
			s.closeUpTo(i)
			return nil, errors.NewSpoolError(fmt.Sprintf("create %s directory", name), err).WithPath(path)
		}
		fd, err := unix.Openat(root, name, dirOpenFlags, 0)
		if err != nil {
			s.closeUpTo(i)
			return nil, errors.NewSpoolError(fmt.Sprintf("open %s directory", name), err).WithPath(path)
		}
		s.dirs[i] = fd
	}
	return s, nil
}

// closeUpTo releases the root descriptor and the first n subdirectory
// descriptors after a partial open.
func (s *Spool) closeUpTo(n int) {
	for i := 0; i < n; i++ {
		_ = unix.Close(s.dirs[i])
	}
	_ = unix.Close(s.root)
	s.root = -1
}

// Path returns the spool root path as given to Open or Create.
func (s *Spool) Path() string { return s.path }

// Dir returns the path of a state subdirectory.
func (s *Spool) Dir(status Status) string {
	return filepath.Join(s.path, status.String())
}

// Close releases the spool's directory descriptors. Transactions created
// by this spool must be committed or rolled back before closing; using
// them afterwards is a caller error.
func (s *Spool) Close() error {
	if s.root < 0 {
		return errors.ErrSpoolClosed
	}
	var firstErr error
	for _, fd := range s.dirs {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := unix.Close(s.root); err != nil && firstErr == nil {
		firstErr = err
	}
	s.root = -1
	if firstErr != nil {
		return errors.NewSpoolError("close spool", firstErr).WithPath(s.path)
	}
	return nil
}

// dirFd returns the descriptor of the subdirectory backing a stored state.
func (s *Spool) dirFd(status Status) int {
	return s.dirs[status]
}

// Add starts the production of a new element: it generates a key and
// creates an empty file for it under tmp/. The caller writes the payload
// into the returned transaction's file and then calls Commit to publish
// the element, or Rollback to discard it.
func (s *Spool) Add() (*Txn, error) {
	key := Generate()
	fd, err := unix.Openat(s.dirs[StatusTmp], string(key),
		unix.O_CREAT|unix.O_EXCL|unix.O_RDWR|unix.O_NOFOLLOW|unix.O_CLOEXEC, elementMode)
	if err != nil {
		return nil, errors.NewSpoolError("create tmp element", err).WithPath(s.path)
	}
	return &Txn{
		status: StatusTmp,
		key:    key,
		file:   os.NewFile(uintptr(fd), filepath.Join(s.Dir(StatusTmp), string(key))),
	}, nil
}

// Commit advances a transaction to the next stored state: tmp -> new for
// producer transactions, wip -> cur for consumer transactions. The rename
// is atomic, so the element is never visible in two states at once and a
// consumer never observes a partially written payload. On success the
// engine closes the transaction's file (unless taken) and the transaction
// enters the new state; it cannot be committed again.
func (s *Spool) Commit(txn *Txn) error {
	if txn.key == "" {
		return errors.NewStateError("commit", "detached")
	}
	switch txn.status {
	case StatusTmp:
		return s.advance(txn, StatusTmp, StatusNew)
	case StatusWip:
		return s.advance(txn, StatusWip, StatusCur)
	default:
		return errors.NewStateError("commit", txn.status.String())
	}
}

// Rollback reverts a transaction: a tmp element is deleted outright, a
// wip element is returned to new for another consumer to claim. Like
// Commit, it releases the transaction's file on success.
func (s *Spool) Rollback(txn *Txn) error {
	if txn.key == "" {
		return errors.NewStateError("rollback", "detached")
	}
	switch txn.status {
	case StatusTmp:
		if err := unix.Unlinkat(s.dirs[StatusTmp], string(txn.key), 0); err != nil {
			return errors.NewSpoolError("unlink tmp element", err).WithPath(s.path)
		}
		txn.release()
		txn.status = StatusFin
		return nil
	case StatusWip:
		return s.advance(txn, StatusWip, StatusNew)
	default:
		return errors.NewStateError("rollback", txn.status.String())
	}
}

// advance renames the transaction's element between state directories and
// releases the transaction's file handle.
func (s *Spool) advance(txn *Txn, from, to Status) error {
	name := string(txn.key)
	if err := unix.Renameat(s.dirs[from], name, s.dirs[to], name); err != nil {
		return errors.NewSpoolError(
			fmt.Sprintf("rename element from %s to %s", from, to), err).WithPath(s.path)
	}
	txn.release()
	txn.status = to
	return nil
}

// HasStatus reports whether the element named by key currently exists as
// a regular file in the given state. StatusFin elements have no directory
// entry, so HasStatus is always false for it.
func (s *Spool) HasStatus(key Key, status Status) bool {
	if !status.stored() {
		return false
	}
	var st unix.Stat_t
	if err := unix.Fstatat(s.dirs[status], string(key), &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFREG
}

// Lookup returns the state an element is currently visible in. The stored
// states are probed in new, wip, cur, tmp order; an element mid-rename may
// briefly be missed, in which case ErrKeyNotFound is returned and the
// caller may simply look again.
func (s *Spool) Lookup(key Key) (Status, error) {
	for _, status := range [...]Status{StatusNew, StatusWip, StatusCur, StatusTmp} {
		if s.HasStatus(key, status) {
			return status, nil
		}
	}
	return StatusFin, errors.NewNotFoundError(string(key))
}

// Delete removes a quiescent element by key, checking cur first and then
// new. Elements in tmp or wip belong to a live transaction and are never
// touched; returning a claimed element to the queue is Rollback's job.
func (s *Spool) Delete(key Key) error {
	for _, status := range [...]Status{StatusCur, StatusNew} {
		err := unix.Unlinkat(s.dirs[status], string(key), 0)
		if err == nil {
			return nil
		}
		if err != unix.ENOENT {
			return errors.NewSpoolError(
				fmt.Sprintf("unlink element from %s", status), err).WithPath(s.path)
		}
	}
	return errors.NewNotFoundError(string(key))
}

// statIsRegular reports whether the named entry in the given directory is
// a regular file, without following symlinks.
func statIsRegular(dirfd int, name string) bool {
	var st unix.Stat_t
	if err := unix.Fstatat(dirfd, name, &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFREG
}

// hidden reports whether a directory entry name is skipped by consumers.
func hidden(name string) bool {
	return len(name) == 0 || name[0] == '.'
}
