// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package worker

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcAttrs puts the worker in its own process group so that terminal
// signals aimed at the TUI (ctrl+c and friends) don't reach it, and so the
// whole group can be killed at shutdown.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess kills the worker and anything it spawned. The negative pid
// targets the process group created at spawn time.
func killProcess(cmd *exec.Cmd) {
	pid := cmd.Process.Pid
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		// Group kill can fail if the worker already changed groups; fall
		// back to killing just the direct child.
		_ = cmd.Process.Kill()
	}
}
