//go:build unix

package process

import (
	"os/exec"
	"syscall"
	"testing"
)

func TestDetach_NewProcessGroup(t *testing.T) {
	cmd := exec.Command("true")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	detach(cmd)
	if !cmd.SysProcAttr.Setpgid {
		t.Error("Setpgid not set")
	}
	if !cmd.SysProcAttr.Setsid {
		t.Error("detach dropped existing attributes")
	}

	bare := exec.Command("true")
	detach(bare)
	if bare.SysProcAttr == nil || !bare.SysProcAttr.Setpgid {
		t.Error("detach without SysProcAttr did not set Setpgid")
	}
}
