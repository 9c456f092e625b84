//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	magicNFS   = 0x6969
	magicSMB   = 0x517b
	magicCIFS  = 0xff534d42
	magicSMB2  = 0xfe534d42
	magicFUSE  = 0x65735546
	magicV9FS  = 0x01021997
	magicCEPH  = 0x00c36400
	magicAFS   = 0x5346414f
	magicOCFS2 = 0x7461636f
)

// DetectFilesystemType classifies the filesystem holding path. The parent
// directory is inspected so the file itself need not exist yet.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	var st unix.Statfs_t
	if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS, magicCEPH, magicAFS, magicOCFS2:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE, magicV9FS:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
