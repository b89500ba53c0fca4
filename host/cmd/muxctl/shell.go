package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"muxer/host/mcu"
)

const shellHelp = `Commands:
  select BANK SINK SOURCE   route SOURCE to SINK
  disable BANK SINK         disconnect SINK
  default BANK SINK         route the default source to SINK
  disable-all               disconnect every sink
  apply [--config FILE] [ROUTE...]
  sinks BANK                list the sinks of BANK
  status                    show the firmware state
  estop                     disconnect everything and shut down
  send COMMAND [ARG...]     send a raw dictionary command
  debug on|off              toggle firmware debug output
  dict                      print the dictionary
  quit
`

// runShell reads commands line by line until EOF or quit. Lines are split
// with shell quoting rules.
func runShell(m *mcu.MCU, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		if err := runShellCommand(m, out, args[0], args[1:]); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func runShellCommand(m *mcu.MCU, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		fmt.Fprint(out, shellHelp)
	case "select":
		if len(args) != 3 {
			return errors.New("usage: select BANK SINK SOURCE")
		}
		source, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return errors.Wrapf(err, "invalid source %q", args[2])
		}
		return runSelect(m, out, args[0], args[1], uint8(source))
	case "disable":
		if len(args) != 2 {
			return errors.New("usage: disable BANK SINK")
		}
		return runDisable(m, out, args[0], args[1])
	case "default":
		if len(args) != 2 {
			return errors.New("usage: default BANK SINK")
		}
		return runDefault(m, out, args[0], args[1])
	case "disable-all":
		return m.DisableAll()
	case "apply":
		path := ""
		if len(args) >= 2 && args[0] == "--config" {
			path, args = args[1], args[2:]
		}
		return runApply(m, out, path, args)
	case "sinks":
		if len(args) != 1 {
			return errors.New("usage: sinks BANK")
		}
		bank, err := mcu.ParseBank(args[0])
		if err != nil {
			return err
		}
		printSinks(m, out, bank)
	case "status":
		return runStatus(m, out)
	case "estop":
		return m.EmergencyStop()
	case "send":
		if len(args) == 0 {
			return errors.New("usage: send COMMAND [ARG...]")
		}
		values := make([]uint32, 0, len(args)-1)
		for _, arg := range args[1:] {
			v, err := strconv.ParseUint(arg, 0, 32)
			if err != nil {
				return errors.Wrapf(err, "invalid argument %q", arg)
			}
			values = append(values, uint32(v))
		}
		return m.SendCommand(args[0], values...)
	case "debug":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.New("usage: debug on|off")
		}
		return m.SetDebug(args[0] == "on")
	case "dict":
		printDictionary(m, out, len(args) == 1 && args[0] == "--sinks")
	default:
		return errors.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}
