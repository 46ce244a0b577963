//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Magic numbers from statfs(2).
const (
	nfsSuperMagic   = 0x6969
	smbSuperMagic   = 0x517b
	smb2SuperMagic  = 0xfe534d42
	cifsSuperMagic  = 0xff534d42
	fuseSuperMagic  = 0x65735546
	sshfsSuperMagic = 0x65735543
)

// DetectFilesystemType classifies the filesystem holding path. When the
// path does not exist yet, its parent directory is probed instead.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	var st unix.Statfs_t
	err := unix.Statfs(path, &st)
	if err != nil {
		err = unix.Statfs(filepath.Dir(path), &st)
	}
	if err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, smb2SuperMagic, cifsSuperMagic:
		return FSTypeSMB
	case fuseSuperMagic, sshfsSuperMagic:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
