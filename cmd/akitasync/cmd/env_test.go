package cmd

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Environment defaults", func() {
	setenv := func(key, value string) {
		Expect(os.Setenv(envPrefix+key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, envPrefix+key)
	}

	It("should fall back when a variable is missing or malformed", func() {
		setenv("IPC", "many")

		opts := defaultMachineOptions()

		Expect(opts.IPC).To(Equal(uint64(1)))
		Expect(opts.WorkPerByte).To(Equal(uint64(1000)))
		Expect(opts.WaitForInterrupt).To(BeTrue())
		Expect(opts.RawTerminalFD).To(Equal(-1))
	})

	It("should warn about malformed variables", func() {
		var buf bytes.Buffer
		saved := envLogger
		envLogger = log.New(&buf, "", 0)
		DeferCleanup(func() { envLogger = saved })

		setenv("IPC", "many")
		setenv("WFI", "maybe")
		setenv("WORK_PER_BYTE", "5")

		opts := defaultMachineOptions()

		Expect(opts.IPC).To(Equal(uint64(1)))
		Expect(opts.WaitForInterrupt).To(BeTrue())
		Expect(opts.WorkPerByte).To(Equal(uint64(5)))
		Expect(buf.String()).To(ContainSubstring(`AKITASYNC_IPC="many"`))
		Expect(buf.String()).To(ContainSubstring(`AKITASYNC_WFI="maybe"`))
		Expect(buf.String()).NotTo(ContainSubstring("WORK_PER_BYTE"))
	})

	It("should take defaults from the environment", func() {
		setenv("IPC", "4")
		setenv("FREQ_MHZ", "2.5")
		setenv("KEEP_ALIVE", "false")
		setenv("TRACE", "out")
		setenv("MONITOR_PORT", "8080")

		opts := defaultMachineOptions()

		Expect(opts.IPC).To(Equal(uint64(4)))
		Expect(opts.FreqMHz).To(Equal(2.5))
		Expect(opts.KeepAlive).To(BeFalse())
		Expect(opts.TracePath).To(Equal("out"))
		Expect(opts.MonitorPort).To(Equal(8080))
	})

	It("should load a .env file without overriding the environment", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		content := "AKITASYNC_WORK_PER_BYTE=7\nAKITASYNC_IPC=3\n"
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		setenv("IPC", "2")
		DeferCleanup(os.Unsetenv, envPrefix+"WORK_PER_BYTE")

		loadDotEnv(path)

		opts := defaultMachineOptions()
		Expect(opts.WorkPerByte).To(Equal(uint64(7)))
		Expect(opts.IPC).To(Equal(uint64(2)))
	})

	It("should ignore a missing .env file", func() {
		Expect(func() {
			loadDotEnv(filepath.Join(GinkgoT().TempDir(), "missing"))
		}).NotTo(Panic())
	})

	It("should expose the defaults as flags", func() {
		setenv("WORK_PER_BYTE", "12")

		runCmd := newRunCmd()

		Expect(runCmd.Flags().Lookup("work-per-byte").DefValue).To(Equal("12"))
		Expect(runCmd.Flags().Lookup("wfi").DefValue).To(Equal("true"))
		Expect(runCmd.Flags().Lookup("trace")).NotTo(BeNil())
	})
})
