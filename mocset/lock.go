package mocset

import (
	"os"

	"github.com/moclib/go-moc/moc"
)

// acquireLock creates path+".lock" atomically (O_CREATE|O_EXCL), per
// spec.md §5's "creation must be atomic (fail if exists)" writer
// contract. Readers never take this lock.
func acquireLock(path string) (release func(), err error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, moc.NewError(moc.Locked, "mocset file is locked by another writer", err)
		}
		return nil, moc.NewError(moc.IoError, "creating mocset lock file", err)
	}
	f.Close()
	return func() { os.Remove(lockPath) }, nil
}
