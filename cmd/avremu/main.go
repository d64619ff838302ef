// Command avremu is the cycle-accurate ATtiny1626/QUTy simulator's CLI
// entrypoint: it loads a firmware image, optionally applies a scripted
// stimulus timeline, runs the machine to completion or timeout, and
// prints the final register/memory dumps. Flag shape follows
// gopkg.in/urfave/cli.v2 with long/short Aliases.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"github.com/cab202/avremu/eventscript"
	"github.com/cab202/avremu/hexload"
	"github.com/cab202/avremu/machine"
	"github.com/cab202/avremu/scheduler"
)

// Exit codes reported to the shell.
const (
	exitOK                = 0
	exitLoadError         = 2
	exitEventParseError   = 3
	exitIllegalInstruction = 4
	exitUsageError        = 64
)

func main() {
	app := &cli.App{
		Name:      "avremu",
		Usage:     "cycle-accurate ATtiny1626/QUTy instruction-set simulator",
		ArgsUsage: "<firmware.hex>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "events",
				Aliases: []string{"e"},
				Usage:   "event script FILE",
			},
			&cli.Uint64Flag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "maximum cycles to simulate (0 = unlimited)",
			},
			&cli.BoolFlag{
				Name:    "dump-stack",
				Aliases: []string{"s"},
				Usage:   "print SP and a stack window to stdout at end",
			},
			&cli.BoolFlag{
				Name:    "dump-regs",
				Aliases: []string{"r"},
				Usage:   "print R0..R31 and SREG at end",
			},
			&cli.BoolFlag{
				Name:    "dump-stdout",
				Aliases: []string{"o"},
				Usage:   "write accumulated USART-TX bytes to stdout.txt",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "emit per-instruction trace to stderr",
			},
		},
		Action: run,
	}
	sort.Sort(cli.FlagsByName(app.Flags))

	if err := app.Run(os.Args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		log.Printf("avremu: %v", err)
		os.Exit(exitUsageError)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		cli.ShowAppHelp(c)
		return cli.Exit("", exitUsageError)
	}
	firmwarePath := c.Args().Get(0)

	m := machine.New(nil)
	m.Reset()

	if err := loadFirmware(firmwarePath, m); err != nil {
		log.Printf("avremu: %v", err)
		return cli.Exit("", exitLoadError)
	}

	events, err := loadEvents(c.String("events"))
	if err != nil {
		log.Printf("avremu: %v", err)
		return cli.Exit("", exitEventParseError)
	}

	sched := scheduler.New(m, events, c.Uint64("timeout"))
	if c.Bool("debug") {
		sched.Trace = func(line string) {
			fmt.Fprintln(os.Stderr, line)
		}
	}

	runErr := sched.Run()
	switch runErr.(type) {
	case nil, scheduler.TimeoutReached, scheduler.HaltReached:
		// Normal termination; dumps still run below.
	default:
		log.Printf("avremu: %v", runErr)
		dump(c, m)
		return cli.Exit("", exitIllegalInstruction)
	}

	dump(c, m)
	return nil
}

// loadFirmware opens path and parses it as Intel HEX into the
// machine's flash.
func loadFirmware(path string, m *machine.Machine) error {
	f, err := os.Open(path)
	if err != nil {
		return hexload.LoadError{Reason: err.Error()}
	}
	defer f.Close()
	_, err = hexload.Load(f, m.Flash)
	return err
}

// loadEvents parses the event script at path, if one was given. A
// non-empty script that yields zero valid events is fatal; malformed
// individual lines are logged but otherwise non-fatal.
func loadEvents(path string) ([]eventscript.Event, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eventscript.ParseError{Reason: err.Error()}
	}
	defer f.Close()

	events, errs := eventscript.Parse(f)
	for _, e := range errs {
		log.Printf("avremu: %v", e)
	}
	if len(events) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}
	return events, nil
}

// dump prints the -r and -s requested diagnostics, in that order, then
// writes the -o serial transcript to stdout.txt.
func dump(c *cli.Context, m *machine.Machine) {
	if c.Bool("dump-regs") {
		regs := m.Chip.DumpRegs()
		fmt.Printf("SREG=0x%02X\n", m.Chip.SREG())
		for i, v := range regs {
			fmt.Printf("R%-2d = 0x%02X\n", i, v)
		}
	}
	if c.Bool("dump-stack") {
		sp := m.Chip.SP()
		fmt.Printf("SP=0x%04X\n", sp)
		for i, b := range m.Chip.DumpStack(8) {
			fmt.Printf("  [SP+%d] 0x%02X\n", i+1, b)
		}
	}
	if c.Bool("dump-stdout") {
		if err := os.WriteFile("stdout.txt", []byte(m.Serial.String()), 0644); err != nil {
			log.Printf("avremu: writing stdout.txt: %v", err)
		}
	}
}
