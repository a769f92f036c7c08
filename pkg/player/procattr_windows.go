//go:build windows

package player

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr detaches the player from the bridge's console process group.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
}
