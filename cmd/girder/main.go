package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vk/girder/internal/app"
	"github.com/vk/girder/internal/cli"
	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/hcl"
	"github.com/vk/girder/internal/yaml"
)

// main is the entrypoint for the girder application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Fatal startup errors surface as panics inside app.NewApp; they
// are recovered here and returned as ordinary errors.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	girderApp := app.NewApp(outW, appConfig, newLoader(appConfig.ConfigPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return girderApp.Run(ctx)
}

// newLoader picks the configuration loader from the path's file extension.
// Directories and everything that is not YAML go to the HCL loader, which is
// also the default format.
func newLoader(path string) config.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.NewLoader()
	default:
		return hcl.NewLoader()
	}
}
