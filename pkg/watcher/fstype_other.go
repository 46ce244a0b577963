//go:build !linux

package watcher

// DetectFilesystemType has no statfs classification off Linux; fsnotify is
// tried and the polling fallback covers the rest.
func DetectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
