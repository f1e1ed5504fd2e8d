package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/electora/internal/app"
	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/config"
	"github.com/abrezinsky/electora/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the Electora logo in a box
func showBanner() {
	const width = 62
	border := strings.Repeat("═", width)

	logo := []string{
		"       _____ _           _                      ",
		"      | ____| | ___  ___| |_ ___  _ __ __ _     ",
		"      |  _| | |/ _ \\/ __| __/ _ \\| '__/ _` |    ",
		"      | |___| |  __/ (__| || (_) | | | (_| |    ",
		"      |_____|_|\\___|\\___|\\__\\___/|_|  \\__,_|    ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		line += strings.Repeat(" ", width-len(line))
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatal("Failed to load .env: ", err)
	}

	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("electora %s\n", version)
		os.Exit(0)
	}

	showBanner()

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	generatedAdmin := cfg.AdminPassword == ""
	if generatedAdmin {
		cfg.AdminPassword = auth.GeneratePassword()
	}
	if cfg.GeneratedSecret {
		appLog.Warn("No JWT secret configured, tokens will not survive a restart")
	}

	a, err := app.New(appLog, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	if generatedAdmin {
		appLog.Info("Admin password", "username", "admin", "password", cfg.AdminPassword)
	}
	appLog.Info("Voting links", "base_url", a.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.NoKeyboard {
		c := newConsole(appLog, fmt.Sprintf("http://localhost:%d/api/elections", cfg.Port), stop)
		c.printHelp()
		go listenForKeyboard(ctx, c)
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
		appLog.Error("Server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
}
