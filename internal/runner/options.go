package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/netsurvey/pkg"
	"github.com/projectdiscovery/netsurvey/pkg/ping"
	"github.com/projectdiscovery/netsurvey/pkg/portscan"
	"github.com/projectdiscovery/netsurvey/pkg/traceroute"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	"github.com/projectdiscovery/netsurvey/pkg/version"
	"github.com/projectdiscovery/netsurvey/pkg/wol"
	fileutil "github.com/projectdiscovery/utils/file"
)

// LocalSweep selects the subnet of this host's own address.
const LocalSweep = "local"

// Options contains the configuration options for a run.
type Options struct {
	ConfigFile string

	Ping      string
	Scan      string
	Sweep     string
	SweepList goflags.StringSlice
	Trace     string
	Wake      string

	Count    int
	Delay    time.Duration
	Timeout  time.Duration
	TTL      int
	Strategy string

	Ports   string
	Method  string
	Workers int

	Prioritize     bool
	DisableProcNet bool

	MaxHops int

	WakeIP      string
	WakePort    int
	WakePackets int

	JSON          bool
	Output        string
	BatchSize     int
	FlushInterval time.Duration

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`netsurvey probes reachability, open ports and live devices on local and remote networks`)

	flagSet.CreateGroup("mode", "Mode",
		flagSet.StringVarP(&options.Ping, "ping", "p", "", "host to probe for reachability"),
		flagSet.StringVarP(&options.Scan, "scan", "s", "", "host to scan for open ports"),
		flagSet.StringVar(&options.Sweep, "sweep", "", "ipv4 address whose /24 is swept for devices (\"local\" for this host)"),
		flagSet.StringSliceVarP(&options.SweepList, "sweep-list", "sl", nil, "addresses or cidr ranges to sweep for devices", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&options.Trace, "trace", "tr", "", "host to trace the route to"),
		flagSet.StringVarP(&options.Wake, "wake", "wk", "", "hardware address to send a wake-on-lan packet to"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Count, "count", "c", 4, "echo requests to send, 0 sends until interrupted"),
		flagSet.DurationVarP(&options.Delay, "delay", "d", time.Second, "delay between echo requests"),
		flagSet.DurationVar(&options.Timeout, "timeout", envDuration(pkg.TimeoutEnv, 0), "probe timeout (0 picks a default per mode)"),
		flagSet.IntVar(&options.TTL, "ttl", ping.DefaultTTL, "time to live of echo requests"),
		flagSet.StringVarP(&options.Strategy, "strategy", "st", pkg.StrategyEnv, "echo strategy (hybrid, native, fallback)"),
	)

	flagSet.CreateGroup("scan", "Scan",
		flagSet.StringVarP(&options.Ports, "ports", "pt", "privileged", "ports to scan (e.g. 22,80,8000-8100, privileged, all)"),
		flagSet.StringVarP(&options.Method, "method", "m", portscan.MethodTCP.String(), "port probe method (tcp, udp)"),
		flagSet.IntVarP(&options.Workers, "workers", "w", envInt(pkg.WorkersEnv, 0), "concurrent probes (0 picks a default per mode)"),
	)

	flagSet.CreateGroup("sweep", "Sweep",
		flagSet.BoolVarP(&options.Prioritize, "prioritize", "pr", false, "probe likely gateway and dhcp addresses first"),
		flagSet.BoolVarP(&options.DisableProcNet, "disable-proc-net", "dpn", envBool(pkg.DisableProcNetEnv), "read the neighbor cache through the ip command only"),
	)

	flagSet.CreateGroup("trace", "Trace",
		flagSet.IntVar(&options.MaxHops, "max-hops", traceroute.DefaultMaxHops, "highest ttl tried when tracing"),
	)

	flagSet.CreateGroup("wake", "Wake",
		flagSet.StringVar(&options.WakeIP, "wake-ip", "255.255.255.255", "address the wake packet is sent to"),
		flagSet.IntVar(&options.WakePort, "wake-port", wol.DefaultPort, "udp port the wake packet is sent to"),
		flagSet.IntVar(&options.WakePackets, "wake-packets", wol.DefaultPackets, "number of wake packets to send"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "write results as json lines"),
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write results to"),
		flagSet.IntVar(&options.BatchSize, "batch-size", envInt(pkg.OutputBatchEnv, 100), "json lines buffered before a write"),
		flagSet.DurationVar(&options.FlushInterval, "flush-interval", time.Duration(envInt(pkg.OutputFlushEnv, 1))*time.Second, "longest a json line stays buffered"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "cli flag configuration file"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if options.ConfigFile != "" {
		if !fileutil.FileExists(options.ConfigFile) {
			gologger.Fatal().Msgf("config file %s does not exist\n", options.ConfigFile)
		}
		if err := flagSet.MergeConfigFile(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("could not read config file %s: %s\n", options.ConfigFile, err)
		}
	}

	options.configureOutput()

	showBanner(options.NoColor)

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

var errNoMode = errors.New("one of -ping, -scan, -sweep, -sweep-list, -trace or -wake is required")

// Mode validates the options and returns the selected run mode.
func (options *Options) Mode() (types.Mode, error) {
	var modes []types.Mode
	if options.Ping != "" {
		modes = append(modes, types.ModePing)
	}
	if options.Scan != "" {
		modes = append(modes, types.ModeScan)
	}
	if options.Sweep != "" || len(options.SweepList) > 0 {
		modes = append(modes, types.ModeSweep)
	}
	if options.Trace != "" {
		modes = append(modes, types.ModeTrace)
	}
	if options.Wake != "" {
		modes = append(modes, types.ModeWake)
	}

	switch len(modes) {
	case 0:
		return types.ModeNone, errNoMode
	case 1:
	default:
		names := make([]string, 0, len(modes))
		for _, m := range modes {
			names = append(names, m.String())
		}
		return types.ModeNone, fmt.Errorf("only one mode can run at a time, got %s", strings.Join(names, ", "))
	}

	if options.Sweep != "" && len(options.SweepList) > 0 {
		return types.ModeNone, errors.New("-sweep and -sweep-list cannot be combined")
	}
	if options.Count < 0 {
		return types.ModeNone, types.InvalidArgument("count", "%d is negative", options.Count)
	}
	if options.Workers < 0 {
		return types.ModeNone, types.InvalidArgument("workers", "%d is negative", options.Workers)
	}
	if options.BatchSize < 1 {
		return types.ModeNone, types.InvalidArgument("batch-size", "%d is less than 1", options.BatchSize)
	}
	return modes[0], nil
}

func envInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil && v >= 0 {
		return v
	}
	return fallback
}

// envDuration accepts Go durations ("1500ms") or whole milliseconds
func envDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if millis, err := strconv.Atoi(value); err == nil && millis >= 0 {
		return time.Duration(millis) * time.Millisecond
	}
	return fallback
}

func envBool(value string) bool {
	return value == "true" || value == "1"
}
