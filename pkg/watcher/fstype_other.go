//go:build !linux

package watcher

// DetectFilesystemType is not implemented outside Linux.
func DetectFilesystemType(string) FilesystemType {
	return FSTypeUnknown
}
