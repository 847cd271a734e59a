// Package platform isolates the OS-specific file operations used when
// reading source trees and writing packages.
package platform

import "errors"

// ErrSymlink is returned when a source entry turns out to be a symbolic link.
var ErrSymlink = errors.New("platform: symbolic links not supported")
