package main

import "fmt"

// exitCodeError ends the process with code and no further message. Git has
// already explained the failure on the terminal.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
