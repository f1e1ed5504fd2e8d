//go:build darwin

package main

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// listenForKeyboard puts the terminal in non-canonical mode and dispatches
// single keys until ctx is done
func listenForKeyboard(ctx context.Context, c *console) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, unix.TIOCSETA, oldState)

	c.readKeys(os.Stdin, ctx.Done())
}
