//go:build windows

package main

import (
	"context"
	"os"
)

// listenForKeyboard reads line-buffered console input on Windows
func listenForKeyboard(ctx context.Context, c *console) {
	c.readKeys(os.Stdin, ctx.Done())
}
