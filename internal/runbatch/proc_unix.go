// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package runbatch

import (
	"errors"
	"os"
	"syscall"
)

// sysProcAttr starts the child in its own process group so the package manager's
// own children (curl, git, tar) can be killed with it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcessTree(ps *os.Process) error {
	err := syscall.Kill(-ps.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		// the group leader may be gone while its children linger, so kill it directly too
		if kerr := ps.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			return kerr //nolint:wrapcheck
		}

		return nil
	}

	return ps.Kill() //nolint:wrapcheck
}
