//go:build !unix

package subprocess

import (
	"fmt"
	"os/exec"
)

// applyUser is unsupported on this platform; spawning under an explicit OS
// user is only implemented for unix targets.
func applyUser(_ *exec.Cmd, username string) error {
	return fmt.Errorf("spawning as user %q is not supported on this platform", username)
}
