//go:build !windows

package engine

import "os/exec"

// suppressWindow is a no-op outside Windows; child processes inherit
// no console there.
func suppressWindow(cmd *exec.Cmd) {}
