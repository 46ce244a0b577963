package watcher

// FilesystemType is a best-effort classification of the filesystem holding
// the watched path. Remote filesystems deliver inotify events unreliably,
// so the watcher treats them as polling-only.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeFUSE
)

// String returns the classification name.
func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// isRemoteFilesystem reports whether events for this filesystem cannot be
// trusted. Unknown is treated as local: fsnotify gets a chance first and
// the polling fallback still catches a quiet failure.
func isRemoteFilesystem(t FilesystemType) bool {
	return t == FSTypeNFS || t == FSTypeSMB || t == FSTypeFUSE
}
