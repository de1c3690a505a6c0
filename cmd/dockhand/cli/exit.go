// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra error
// message. A command returning an ExitError has already written its
// own output; main exits with the code and prints nothing. Used where
// a non-zero exit is an answer rather than a failure, like a container
// that finished with a non-zero status under "dockhand attach".
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface to
// distinguish a handled non-zero exit from an error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}
