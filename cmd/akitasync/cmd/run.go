package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/akitasync/sim/id"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func defaultMachineOptions() machineOptions {
	return machineOptions{
		MonitorPort:       envInt("MONITOR_PORT", 0),
		EnableMonitor:     envBool("MONITOR", false),
		OpenBrowser:       envBool("OPEN_BROWSER", false),
		TracePath:         envString("TRACE", ""),
		LogTransitions:    envBool("LOG_TRANSITIONS", false),
		LogEvents:         envBool("LOG_EVENTS", false),
		FreqMHz:           envFloat("FREQ_MHZ", 1),
		IPC:               envUint("IPC", 1),
		InitialWork:       envUint("INITIAL_WORK", 0),
		WorkPerByte:       envUint("WORK_PER_BYTE", 1000),
		WaitForInterrupt:  envBool("WFI", true),
		KeepAlive:         envBool("KEEP_ALIVE", true),
		RawTerminalFD:     -1,
		ForwardInterrupts: true,
	}
}

func newRunCmd() *cobra.Command {
	opts := defaultMachineOptions()
	rawTerminal := envBool("RAW_TERMINAL", false)
	traceRun := false

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the console machine on stdin and stdout.",
		Long: `Run echoes every byte typed on stdin and turns it into work ` +
			`for a virtual CPU. While the CPU waits for input the engine ` +
			`sleeps instead of spinning. Type q or press Ctrl-C to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rawTerminal {
				opts.RawTerminalFD = int(os.Stdin.Fd())
			}

			if traceRun && opts.TracePath == "" {
				opts.TracePath = "akitasync_" + id.NewRunID()
			}

			logger := log.New(cmd.ErrOrStderr(), "", 0)
			m := newMachine(opts, os.Stdin, cmd.OutOrStdout(), logger)

			if err := m.Run(); err != nil {
				return fmt.Errorf("run: %w", err)
			}

			atexit.Exit(0)

			return nil
		},
	}

	f := runCmd.Flags()
	f.BoolVar(&opts.EnableMonitor, "monitor", opts.EnableMonitor,
		"Serve the monitoring page while running.")
	f.IntVar(&opts.MonitorPort, "monitor-port", opts.MonitorPort,
		"Port of the monitoring page. 0 picks a free port.")
	f.BoolVar(&opts.OpenBrowser, "open-browser", opts.OpenBrowser,
		"Open the monitoring page in a browser.")
	f.StringVar(&opts.TracePath, "trace-file", opts.TracePath,
		"Record coordinator transitions into <trace-file>.sqlite3.")
	f.BoolVar(&traceRun, "trace", false,
		"Record coordinator transitions into a file named after the run.")
	f.BoolVar(&opts.LogTransitions, "log-transitions", opts.LogTransitions,
		"Print every coordinator transition to stderr.")
	f.BoolVar(&opts.LogEvents, "log-events", opts.LogEvents,
		"Print every dispatched event to stderr.")
	f.Float64Var(&opts.FreqMHz, "freq", opts.FreqMHz,
		"CPU frequency in MHz.")
	f.Uint64Var(&opts.IPC, "ipc", opts.IPC,
		"Instructions the CPU executes per cycle.")
	f.Uint64Var(&opts.InitialWork, "initial-work", opts.InitialWork,
		"Instructions the CPU runs before waiting for input.")
	f.Uint64Var(&opts.WorkPerByte, "work-per-byte", opts.WorkPerByte,
		"Instructions fed to the CPU for every byte received.")
	f.BoolVar(&opts.WaitForInterrupt, "wfi", opts.WaitForInterrupt,
		"Suspend the engine while the CPU has nothing to run.")
	f.BoolVar(&opts.KeepAlive, "keep-alive", opts.KeepAlive,
		"Keep the engine alive while stdin is open.")
	f.BoolVar(&rawTerminal, "raw", rawTerminal,
		"Put the terminal into raw mode.")

	return runCmd
}
