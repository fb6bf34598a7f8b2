// blkbrew.go
// Block device capacity checker: stamps every block of a range, resets the
// drive, reads the range back and reports sectors that did not survive.
// Cobra CLI, optional tcell fullscreen block map.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blkbrew/brew"
	"blkbrew/config"
	"blkbrew/device"
	"blkbrew/logger"
	"blkbrew/retrodfrg"
)

// Exit status after an interruption, as a shell reports SIGINT.
const exitInterrupted = 130

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "blkbrew [flags] <DISK_DEV>",
		Short: "Check that a block device holds the capacity it reports",
		Long: "Write a self-describing pattern to a range of blocks, reset the drive and read\n" +
			"the range back. Sectors that come back overwritten by other addresses reveal\n" +
			"a drive announcing more capacity than it has.\n\n" +
			"With --debug, DISK_DEV is a file (or a directory to create one in) backing an\n" +
			"emulated fake-capacity drive.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			cfg.Target = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.File != "" {
				log.Debug("loaded configuration", zap.String("file", cfg.File))
			}

			return run(cfg, log)
		},
	}
	config.RegisterFlags(root.Flags())

	deviceCmd := &cobra.Command{
		Use:   "device",
		Short: "Device related utilities (safe, read-only)",
	}

	var listAll bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List whole-disk devices that can be checked (read-only)",
		RunE: func(_ *cobra.Command, _ []string) error {
			infos, err := discoverDevices()
			if err != nil {
				return err
			}
			printDeviceList(os.Stdout, infos, listAll)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&listAll, "all", false, "include partitions and other non-compatible devices")
	deviceCmd.AddCommand(listCmd)
	root.AddCommand(deviceCmd)

	must(root.Execute())
}

func run(cfg *config.Config, log *zap.Logger) error {
	console := &operatorConsole{in: os.Stdin, out: os.Stdout}
	dev, desc, err := openTarget(cfg, log, console)
	if err != nil {
		return err
	}
	perf := device.NewPerfDevice(dev)

	var (
		rep brew.Reporter
		ui  *retrodfrg.UI
	)
	if cfg.UI {
		ui, err = retrodfrg.NewUI()
		if err != nil {
			dev.Close()
			return fmt.Errorf("start UI: %w", err)
		}
		console.ui = ui
		rep = newUIReporter(ui, desc, dev.BlockOrder(), cfg)
	} else {
		rep = newTextReporter(os.Stdout, cfg.ShowBad)
		fmt.Println(desc)
		fmt.Println()
	}

	b := brew.New(perf, rep, log)

	// Ctrl+C, q and SIGTERM stop the run after the current block so the
	// device is released before exiting.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	var uiDone <-chan struct{}
	if ui != nil {
		uiDone = ui.Done()
	}
	go func() {
		select {
		case <-sigChan:
		case <-uiDone:
		}
		b.Stop()
	}()

	res, runErr := b.Run(brew.Params{
		Range: brew.BlockRange{First: cfg.StartAt, Last: cfg.EndAt},
		Write: cfg.Write,
		Read:  cfg.Read,
	})

	if ui != nil {
		ui.Close()
	}
	closeErr := dev.Close()

	if errors.Is(runErr, brew.ErrInterrupted) {
		fmt.Fprintf(os.Stderr, "\nInterrupted\n")
		os.Exit(exitInterrupted)
	}
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		log.Warn("closing device failed", zap.Error(closeErr))
	}

	printSummary(os.Stdout, res, perf.Stats(), dev.BlockOrder())
	return nil
}
