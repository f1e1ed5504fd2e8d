//go:build linux

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
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		// not a terminal
		return
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, unix.TCSETS, oldState)

	c.readKeys(os.Stdin, ctx.Done())
}
