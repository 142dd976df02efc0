package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rvsim/rv32sim/config"
	"github.com/rvsim/rv32sim/debugger"
	"github.com/rvsim/rv32sim/sim"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion     = flag.Bool("version", false, "Show version information")
		showHelp        = flag.Bool("help", false, "Show help information")
		debugMode       = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode         = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		isaExt          = flag.String("isa", "", "ISA extension string, e.g. rv32imfzicsr (default: from config)")
		maxInstructions = flag.Uint64("max-instructions", 0, "Maximum instructions before halt (0: use config default)")
		entryPoint      = flag.String("entry", "", "Override entry point address (hex or decimal)")
		binAddr         = flag.String("bin-addr", "0x0", "Load address for a raw binary image (used with -bin)")
		binPath         = flag.String("bin", "", "Load a raw binary image instead of an ELF file")
		configPath      = flag.String("config", "", "Path to config file (default: platform config dir)")
		isaTest         = flag.Bool("isa-test", false, "Run as an HTIF ISA compliance test and report pass/fail")
		verboseMode     = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32sim %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: loading config: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() < 1 && *binPath == "" {
		fmt.Fprintln(os.Stderr, "rv32sim: missing program image (ELF path or -bin)")
		flag.Usage()
		os.Exit(2)
	}

	simCfg := sim.DefaultConfig()
	simCfg.MemoryBase = parseAddr(cfg.Memory.BaseAddr, 0)
	simCfg.MemorySize = int(cfg.Memory.Size)
	simCfg.Verbose = *verboseMode
	simCfg.StopOnTrap = cfg.Execution.StopOnTrap

	extString := cfg.Execution.Extensions
	if *isaExt != "" {
		extString = *isaExt
	}
	simCfg.Extensions = sim.ExtensionsFromString(extString)

	if *maxInstructions != 0 {
		simCfg.MaxInstructions = *maxInstructions
	} else {
		simCfg.MaxInstructions = cfg.Execution.MaxInstructions
	}

	if flag.NArg() >= 1 {
		simCfg.ElfPath = flag.Arg(0)
	}
	if *binPath != "" {
		simCfg.BinPath = *binPath
		simCfg.BinLoadAddr = parseAddr(*binAddr, 0)
	}
	if *entryPoint != "" {
		simCfg.EntryPC = parseAddr(*entryPoint, 0)
		simCfg.EntryPCSet = true
	}

	env, err := sim.FromConfig(simCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
		os.Exit(1)
	}

	if *isaTest {
		runISATest(env, simCfg.MaxInstructions)
		return
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(env)
		if *tuiMode {
			debugger.RunTUI(dbg)
		} else {
			debugger.RunCLI(dbg)
		}
		return
	}

	if err := env.RunUntilHalt(); err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: execution error: %v\n", err)
		os.Exit(1)
	}
}

func runISATest(env *sim.Env, maxInstructions uint64) {
	result, err := env.RunISATest(maxInstructions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: execution error: %v\n", err)
		os.Exit(1)
	}
	switch result.Kind {
	case sim.TestPass:
		fmt.Println("PASS")
	case sim.TestFail:
		fmt.Printf("FAIL (case %d)\n", result.Code)
		os.Exit(1)
	default:
		fmt.Println("TIMEOUT")
		os.Exit(1)
	}
}

func parseAddr(s string, fallback uint32) uint32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return fallback
	}
	return uint32(v)
}

func printHelp() {
	fmt.Println(`rv32sim - a RISC-V RV32 instruction set simulator

Usage:
  rv32sim [flags] <program.elf>
  rv32sim -bin <program.bin> -bin-addr 0x0 [flags]

Flags:`)
	flag.PrintDefaults()
}
