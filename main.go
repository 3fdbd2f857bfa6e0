package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/zeozeozeo/gonucleus/console"
	"github.com/zeozeozeo/gonucleus/emulator"
	"github.com/zeozeozeo/gonucleus/monitor"
	"github.com/zeozeozeo/gonucleus/monitor/window"
	"github.com/zeozeozeo/gonucleus/nucleus"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("nucleus: %v", err)
	}
}

func run() error {
	// parse arguments
	imagePath := flag.String("image", "", "path to a program image, runs the built-in demo if empty")
	logLevel := flag.String("log-level", "info", "nucleus log level (trace, debug, info, warn, error)")
	maxCycles := flag.Uint64("max-cycles", 0, "stop after this many processor cycles, 0 for no limit")
	clockPeriod := flag.Uint("clock", nucleus.PSEUDO_CLOCK_PERIOD, "pseudo-clock period in microseconds")
	ttyPath := flag.String("tty", "", "connect terminal 0 to this tty device (\"-\" for the controlling terminal)")
	snapshotPath := flag.String("snapshot", "", "write a PNG of the process state to this path when the nucleus stops")
	showWindow := flag.Bool("window", false, "show the live process monitor")
	breakpoints := flag.String("break", "", "comma separated hex addresses to log when executed")
	flag.Parse()

	level := hclog.LevelFromString(*logLevel)
	if level == hclog.NoLevel {
		log.Fatalf("unknown log level \"%s\"", *logLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "gonucleus",
		Level:  level,
		Output: os.Stderr,
	})

	// build the machine
	ram := emulator.NewRAM(emulator.DEFAULT_RAM_SIZE)
	inter := emulator.NewInterconnect(ram, emulator.NewTimeHandler(emulator.DEFAULT_TIMESCALE))
	cpu := emulator.NewCPU(inter)

	if *breakpoints != "" {
		cpu.Debugger = newDebugger(*breakpoints, logger)
	}

	var initial emulator.State
	if *imagePath == "" {
		log.Printf("loading built-in demo")
		initial = loadDemo(inter, ram.Size())
	} else {
		initial = loadImage(*imagePath, inter, ram.Size())
	}

	term := emulator.NewTerminal(os.Stdout)
	if *ttyPath != "" {
		path := *ttyPath
		if path == "-" {
			path = ""
		}
		con, err := console.Open(path, logger)
		if err != nil {
			return fmt.Errorf("failed to open tty: %w", err)
		}
		defer con.Close()
		term.Out = con.Output()
		con.Attach(term)
	}
	inter.Install(nucleus.TERMINAL_LINE, 0, term)
	inter.Install(uint32(emulator.INTERRUPT_PRINTER), 0, emulator.NewPrinter(os.Stdout))

	cfg := nucleus.DefaultConfig()
	cfg.Logger = logger
	cfg.ClockPeriod = uint32(*clockPeriod)
	cfg.MaxCycles = *maxCycles

	var win *window.Window
	if *showWindow {
		win = window.New("gonucleus", monitor.DEFAULT_WIDTH, monitor.DEFAULT_HEIGHT)
		cfg.Observer = win.Observe
	}

	n := nucleus.New(cpu, cfg)
	if err := n.Boot(initial); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var err error
	if win == nil {
		err = n.Run(ctx)
	} else {
		err = runWithWindow(ctx, n, win)
	}
	logger.Info("nucleus stopped",
		"elapsed", time.Since(start),
		"cycles", inter.Time.Cycles,
		"processes", n.ProcessCount())

	if *snapshotPath != "" {
		if serr := monitor.NewRenderer(0, 0).SavePNG(*snapshotPath, n.Snapshot()); serr != nil {
			log.Printf("failed to save snapshot: %v", serr)
		} else {
			log.Printf("saved snapshot to \"%s\"", *snapshotPath)
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Runs the nucleus in the background while the window owns the main
// goroutine. Closing the window stops the nucleus
func runWithWindow(ctx context.Context, n *nucleus.Nucleus, win *window.Window) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		err := n.Run(ctx)
		if err != nil {
			win.SetStatus(err.Error())
		} else {
			win.SetStatus("halted")
		}
		win.Observe(n.Snapshot())
		result <- err
	}()

	if err := win.Run(); err != nil {
		log.Printf("window: %v", err)
	}
	cancel()
	return <-result
}

func newDebugger(list string, logger hclog.Logger) *emulator.Debugger {
	dbg := emulator.NewDebugger(func(ev emulator.DebugEvent, addr uint32) {
		logger.Info("debugger hit", "event", ev.String(), "addr", fmt.Sprintf("0x%08x", addr))
	})
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
		addr, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			log.Fatalf("invalid breakpoint \"%s\": %v", s, err)
		}
		dbg.AddBreakpoint(uint32(addr))
	}
	return dbg
}

func loadImage(path string, mem emulator.Memory, ramSize uint32) emulator.State {
	log.Printf("loading image \"%s\"", path)
	start := time.Now()

	// read image
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open image: %v", err)
	}
	defer file.Close()

	// load image
	img, err := emulator.LoadImage(file, emulator.USER_BASE)
	if err != nil {
		log.Fatalf("failed to load image: %v", err)
	}
	img.Load(mem)

	log.Printf("loaded %d words in %s, entry 0x%08x", len(img.Words), time.Since(start), img.Entry)
	return initialState(img.Entry, ramSize)
}
