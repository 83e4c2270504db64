// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package worker

import (
	"os/exec"
	"syscall"
)

// setProcAttrs detaches the worker from the TUI's console so ctrl+c events
// don't propagate to it.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcess terminates the worker. Windows has no process groups to sweep;
// direct children are all we can reach.
func killProcess(cmd *exec.Cmd) {
	_ = cmd.Process.Kill()
}
