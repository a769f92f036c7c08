//go:build !windows

package player

import "syscall"

// sysProcAttr puts the player in its own process group so a Ctrl+C aimed at
// the bridge does not close the player too.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
