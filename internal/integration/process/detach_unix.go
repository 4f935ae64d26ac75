//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// detach moves cmd into a new process group so a Ctrl-C aimed at
// coltlink's terminal does not reach it.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
