package sandbox

import "io"

// SetBackupWriter replaces the backup data writer until the returned restore is called
func SetBackupWriter(fn func(w io.Writer, data []byte) error) (restore func()) {
	prev := writeBackupData
	writeBackupData = fn
	return func() { writeBackupData = prev }
}
