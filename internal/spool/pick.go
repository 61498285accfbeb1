package spool

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/spoolio/spoolio/internal/errors"
)

// pickBatch is how many directory entries each Readdirnames call returns
// while scanning new/. Small enough to start claiming before a large
// backlog is fully listed.
const pickBatch = 128

// Pick atomically claims one element from new/ and returns a transaction
// in the wip state whose file is open for reading and writing. If no
// eligible element exists, Pick returns ErrSpoolEmpty; polling consumers
// treat that as a normal outcome and call Pick again later.
//
// Exclusivity needs no lock: producers only ever publish into new/ via an
// atomic rename, so any regular file there is a complete element, and the
// claim uses link(2) into wip/, which fails if the destination name
// already exists. When several consumers race for the same entry exactly
// one link succeeds; the losers skip to the next entry. After a
// successful link Pick opens the wip/ file and unlinks the new/ entry; a
// failure at either step unwinds the link so that no element is ever
// visible in both directories or orphaned in wip/.
func (s *Spool) Pick() (*Txn, error) {
	// A private directory stream for this call; the shared subdirectory
	// descriptors carry no read cursor.
	fd, err := unix.Openat(s.root, StatusNew.String(), dirOpenFlags, 0)
	if err != nil {
		return nil, errors.NewSpoolError("open new directory for scan", err).WithPath(s.path)
	}
	stream := os.NewFile(uintptr(fd), s.Dir(StatusNew))
	defer stream.Close()

	for {
		names, err := stream.Readdirnames(pickBatch)
		for _, name := range names {
			txn, claimErr := s.claim(name)
			if claimErr == errSkipEntry {
				continue
			}
			if claimErr != nil {
				return nil, claimErr
			}
			return txn, nil
		}
		if err == io.EOF {
			return nil, errors.ErrSpoolEmpty
		}
		if err != nil {
			return nil, errors.NewSpoolError("read new directory", err).WithPath(s.path)
		}
	}
}

// errSkipEntry tells the Pick scan loop to move on to the next directory
// entry: the candidate was ineligible or another claimant won the race.
var errSkipEntry = errors.New("skip entry")

// claim attempts to take exclusive ownership of one named entry in new/.
func (s *Spool) claim(name string) (*Txn, error) {
	if hidden(name) || !statIsRegular(s.dirs[StatusNew], name) {
		return nil, errSkipEntry
	}

	// link, not rename: rename would silently overwrite a same-named
	// file already sitting in wip/; link fails instead, and its
	// atomicity guarantees a single winner per entry.
	if err := unix.Linkat(s.dirs[StatusNew], name, s.dirs[StatusWip], name, 0); err != nil {
		switch err {
		case unix.EEXIST, unix.ENOENT:
			// Lost the race: another claimant linked this name first,
			// or already unlinked the source.
			return nil, errSkipEntry
		default:
			return nil, errors.NewSpoolError("link element into wip", err).WithPath(s.path)
		}
	}

	fd, err := unix.Openat(s.dirs[StatusWip], name,
		unix.O_RDWR|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		// Never leave an orphan in wip/ behind a failed claim.
		_ = unix.Unlinkat(s.dirs[StatusWip], name, 0)
		return nil, errors.NewSpoolError("open claimed element", err).WithPath(s.path)
	}

	if err := unix.Unlinkat(s.dirs[StatusNew], name, 0); err != nil {
		// Unwind fully: the element must not be visible in both new/
		// and wip/ at once.
		_ = unix.Close(fd)
		_ = unix.Unlinkat(s.dirs[StatusWip], name, 0)
		return nil, errors.NewSpoolError("unlink claimed element from new", err).WithPath(s.path)
	}

	return &Txn{
		status: StatusWip,
		key:    Key(name),
		file:   os.NewFile(uintptr(fd), filepath.Join(s.Dir(StatusWip), name)),
	}, nil
}
