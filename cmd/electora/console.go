package main

import (
	"fmt"
	"io"
	"os"

	"github.com/abrezinsky/electora/internal/browser"
	"github.com/abrezinsky/electora/internal/logger"
)

// console reacts to single-key commands typed at the server terminal
type console struct {
	log          *logger.SlogLogger
	electionsURL string
	quit         func()
	open         func(string) error
	out          io.Writer
}

func newConsole(log *logger.SlogLogger, electionsURL string, quit func()) *console {
	return &console{
		log:          log,
		electionsURL: electionsURL,
		quit:         quit,
		open:         browser.Open,
		out:          os.Stdout,
	}
}

// handleKey runs the command bound to key and reports whether the
// listener should stop
func (c *console) handleKey(key byte) bool {
	switch key {
	case 'a', 'A':
		fmt.Fprintf(c.out, "%sOpening elections in browser...%s\n", cyan, reset)
		if err := c.open(c.electionsURL); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case 'h', 'H':
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case 'l', 'L':
		c.cycleLogLevel()
	case '?':
		c.printHelp()
	case 'q', 'Q', 0x03: // 0x03 is Ctrl+C in raw mode
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return true
	}
	return false
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (c *console) cycleLogLevel() {
	var next string
	switch c.log.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	default:
		next = "debug"
	}

	c.log.SetLevel(logger.ParseLevel(next))
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printHelp displays all available keyboard shortcuts
func (c *console) printHelp() {
	fmt.Fprintf(c.out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(c.out, "    %sa%s      - Open elections in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(c.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// readKeys feeds bytes from r to handleKey until a command stops it,
// done is closed or r fails
func (c *console) readKeys(r io.Reader, done <-chan struct{}) {
	buf := make([]byte, 1)
	for {
		select {
		case <-done:
			return
		default:
		}
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && c.handleKey(buf[0]) {
			return
		}
	}
}
