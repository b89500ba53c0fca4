package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"runtime"

	"github.com/alecthomas/kingpin"
	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"

	"muxer/config"
	"muxer/host/mcu"
	"muxer/host/serial"
)

var logger = kitlog.NewNopLogger()

var (
	app = kingpin.New("muxctl", "Route board signals through the pinmux firmware").Version(versionStanza())

	// Global flags applying to every command
	debug           = app.Flag("debug", "Enable debug logging").Default("false").Bool()
	device          = app.Flag("device", "Serial device path").Envar("MUXCTL_DEVICE").Default("/dev/ttyUSB0").String()
	baud            = app.Flag("baud", "Serial baud rate").Default("115200").Int()
	readTimeout     = app.Flag("read-timeout", "Serial read timeout").Default("100ms").Duration()
	responseTimeout = app.Flag("response-timeout", "Time to wait for a firmware response").Default("1s").Duration()
	firmwareDebug   = app.Flag("firmware-debug", "Enable the firmware's debug output").Default("false").Bool()

	dict      = app.Command("dict", "Print the firmware dictionary")
	dictSinks = dict.Flag("sinks", "List the sink names of both banks").Default("false").Bool()

	selectCmd    = app.Command("select", "Route a source to a sink")
	selectBank   = selectCmd.Arg("bank", "Sink bank: pins or blocks").Required().String()
	selectSink   = selectCmd.Arg("sink", "Sink name, e.g. ser0_tx").Required().String()
	selectSource = selectCmd.Arg("source", "Source index; 0 disables, 1 is the default").Required().Uint8()

	disable     = app.Command("disable", "Disconnect a sink")
	disableBank = disable.Arg("bank", "Sink bank: pins or blocks").Required().String()
	disableSink = disable.Arg("sink", "Sink name").Required().String()

	defaultCmd  = app.Command("default", "Route the default source to a sink")
	defaultBank = defaultCmd.Arg("bank", "Sink bank: pins or blocks").Required().String()
	defaultSink = defaultCmd.Arg("sink", "Sink name").Required().String()

	disableAll = app.Command("disable-all", "Disconnect every sink")

	apply       = app.Command("apply", "Apply a board configuration")
	applyConfig = apply.Flag("config", "Board configuration file (JSON); the built-in board routes if unset").String()
	applyRoutes = apply.Arg("route", "Apply only these routes").Strings()

	status = app.Command("status", "Show the firmware configuration state")
	estop  = app.Command("estop", "Disconnect every sink and shut the firmware down")
	shell  = app.Command("shell", "Interactive session")

	watch               = app.Command("watch", "Poll the firmware state and serve metrics until interrupted")
	watchInterval       = watch.Flag("interval", "Interval between state polls").Default("5s").Duration()
	watchMetricsAddress = watch.Flag("metrics-address", "Address to bind HTTP metrics listener").Default("127.0.0.1:9526").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

	if *debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
	stdlog.SetOutput(kitlog.NewStdlibAdapter(logger))

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.ReadTimeout = *readTimeout

	m := mcu.NewMCU(kitlog.With(logger, "component", "mcu"))
	m.ResponseTimeout = *responseTimeout
	if err := m.Connect(cfg); err != nil {
		kingpin.Fatalf("failed to connect: %v", err)
	}
	defer m.Close()

	if err := m.RetrieveDictionary(); err != nil {
		kingpin.Fatalf("failed to retrieve dictionary: %v", err)
	}
	if *firmwareDebug {
		if err := m.SetDebug(true); err != nil {
			kingpin.Fatalf("failed to enable firmware debug output: %v", err)
		}
	}

	var err error
	switch command {
	case dict.FullCommand():
		printDictionary(m, os.Stdout, *dictSinks)
	case selectCmd.FullCommand():
		err = runSelect(m, os.Stdout, *selectBank, *selectSink, *selectSource)
	case disable.FullCommand():
		err = runDisable(m, os.Stdout, *disableBank, *disableSink)
	case defaultCmd.FullCommand():
		err = runDefault(m, os.Stdout, *defaultBank, *defaultSink)
	case disableAll.FullCommand():
		err = m.DisableAll()
	case apply.FullCommand():
		err = runApply(m, os.Stdout, *applyConfig, *applyRoutes)
	case status.FullCommand():
		err = runStatus(m, os.Stdout)
	case estop.FullCommand():
		err = m.EmergencyStop()
	case shell.FullCommand():
		err = runShell(m, os.Stdin, os.Stdout)
	case watch.FullCommand():
		err = runWatch(m, *watchInterval, *watchMetricsAddress)
	}

	if err != nil {
		m.Close()
		kingpin.Fatalf("%s: %v", command, err)
	}
}

func printDictionary(m *mcu.MCU, out io.Writer, sinks bool) {
	m.PrintDictionary(out)
	if !sinks {
		return
	}
	for _, bank := range []mcu.Bank{mcu.BankPins, mcu.BankBlocks} {
		fmt.Fprintf(out, "\n%s sinks:\n", bank)
		printSinks(m, out, bank)
	}
}

func printSinks(m *mcu.MCU, out io.Writer, bank mcu.Bank) {
	for idx, name := range m.SinkNames(bank) {
		fmt.Fprintf(out, "  [%d] %s\n", idx, name)
	}
}

func printResult(out io.Writer, result mcu.Result) {
	state := "ok"
	if !result.OK {
		state = "refused"
	}
	fmt.Fprintf(out, "%s %s source=%d %s\n", result.Bank, result.Sink, result.Source, state)
}

func runSelect(m *mcu.MCU, out io.Writer, bankName, sink string, source uint8) error {
	bank, err := mcu.ParseBank(bankName)
	if err != nil {
		return err
	}
	result, err := m.Select(bank, sink, source)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

func runDisable(m *mcu.MCU, out io.Writer, bankName, sink string) error {
	bank, err := mcu.ParseBank(bankName)
	if err != nil {
		return err
	}
	result, err := m.Disable(bank, sink)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

func runDefault(m *mcu.MCU, out io.Writer, bankName, sink string) error {
	bank, err := mcu.ParseBank(bankName)
	if err != nil {
		return err
	}
	result, err := m.Default(bank, sink)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

// runApply applies a configuration file, or the built-in board routes
func runApply(m *mcu.MCU, out io.Writer, path string, only []string) error {
	board := config.DefaultSonataConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if board, err = config.LoadConfig(data); err != nil {
			return err
		}
	}
	logger.Log("event", "config.loaded", "board", board.Name, "routes", len(board.Routes))

	if len(only) == 0 {
		return m.ApplyConfig(board)
	}
	for _, name := range only {
		route, err := board.Route(name)
		if err != nil {
			return err
		}
		if err := m.ApplyRoute(route); err != nil {
			return err
		}
		fmt.Fprintf(out, "route %s applied\n", name)
	}
	return nil
}

func runStatus(m *mcu.MCU, out io.Writer) error {
	cfg, err := m.GetConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "configured=%v crc=%d shutdown=%v\n", cfg.IsConfig, cfg.CRC, cfg.IsShutdown)
	return nil
}

// Set at build time
var (
	Version   = "dev"
	Commit    = "none"
	GoVersion = runtime.Version()
)

func versionStanza() string {
	return fmt.Sprintf(
		"muxctl Version: %v\nGit SHA: %v\nGo Version: %v\nGo OS/Arch: %v/%v",
		Version, Commit, GoVersion, runtime.GOOS, runtime.GOARCH,
	)
}
