//go:build !unix

package scdl

import "os/exec"

// killProcessGroup keeps the default cancellation, which kills only the
// process itself; WaitDelay bounds the wait on inherited pipes
func killProcessGroup(*exec.Cmd) {}
