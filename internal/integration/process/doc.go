// Package process supervises the COLT process started by coltlink.
//
// The Supervisor starts children under uuid identifiers and tracks them by
// name, so a second launch finds the running COLT instead of starting
// another. Attached children share the supervisor's output writer and are
// stopped on Shutdown with SIGTERM, then SIGKILL after the timeout.
// Detached children get their own process group and no output pipes, and
// keep running after coltlink exits:
//
//	sup := process.NewSupervisor(process.WithOutput(logWriter))
//	defer sup.Shutdown(5 * time.Second)
//
//	proc, err := sup.StartDetached("colt", exec.Command(coltPath, projectFile))
package process
