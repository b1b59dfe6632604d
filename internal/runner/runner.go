package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/ping"
	"github.com/projectdiscovery/netsurvey/pkg/portscan"
	"github.com/projectdiscovery/netsurvey/pkg/subnet"
	"github.com/projectdiscovery/netsurvey/pkg/traceroute"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	"github.com/projectdiscovery/netsurvey/pkg/wol"
	"github.com/rs/xid"
)

// Runner contains the internal logic of the program
type Runner struct {
	id      string
	options *Options
	mode    types.Mode
	output  *OutputWriter
	prober  *ping.Prober
}

// NewRunner validates options and opens the output.
func NewRunner(options *Options) (*Runner, error) {
	mode, err := options.Mode()
	if err != nil {
		return nil, err
	}
	strategy, err := ping.ParseStrategy(options.Strategy)
	if err != nil {
		return nil, err
	}
	output, err := NewOutputWriter(options.Output, options.JSON, options.BatchSize, options.FlushInterval)
	if err != nil {
		return nil, err
	}
	return &Runner{
		id:      xid.New().String(),
		options: options,
		mode:    mode,
		output:  output,
		prober:  ping.New(ping.WithStrategy(strategy)),
	}, nil
}

// Run executes the selected mode until it completes or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	gologger.Verbose().Msgf("running %s", r.mode)

	switch r.mode {
	case types.ModePing:
		return r.runPing(ctx)
	case types.ModeScan:
		return r.runScan(ctx)
	case types.ModeSweep:
		return r.runSweep(ctx)
	case types.ModeTrace:
		return r.runTrace(ctx)
	case types.ModeWake:
		return r.runWake(ctx)
	default:
		return errNoMode
	}
}

// Close flushes pending output.
func (r *Runner) Close() {
	r.output.Close()
}

func (r *Runner) runPing(ctx context.Context) error {
	target, err := common.NewTarget(r.options.Ping)
	if err != nil {
		return err
	}
	opts, err := ping.NewOptions(ping.WithTimeout(r.options.Timeout), ping.WithTTL(r.options.TTL))
	if err != nil {
		return err
	}
	repeater, err := ping.NewRepeater(target, opts, r.options.Count, r.options.Delay, r.prober)
	if err != nil {
		return err
	}

	var runErr error
	h := repeater.Start(ctx, ping.ListenerFuncs{
		Result: func(result ping.Result) {
			r.output.Write(r.id, "ping", result, result.String())
		},
		Finished: func(stats ping.Statistics) {
			r.output.Write(r.id, "ping-statistics", stats, stats.String())
		},
		Error: func(err error) { runErr = err },
	})
	h.Wait()
	return runErr
}

// portResult is the json form of one open port
type portResult struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Open bool   `json:"open"`
}

func (r *Runner) runScan(ctx context.Context) error {
	target, err := common.NewTarget(r.options.Scan)
	if err != nil {
		return err
	}
	method, err := portscan.ParseMethod(r.options.Method)
	if err != nil {
		return err
	}
	opts := []portscan.Option{portscan.WithPortSpec(r.options.Ports), portscan.WithMethod(method)}
	if r.options.Workers > 0 {
		opts = append(opts, portscan.WithWorkers(r.options.Workers))
	}
	if r.options.Timeout > 0 {
		opts = append(opts, portscan.WithTimeout(r.options.Timeout))
	}
	scanner, err := portscan.New(target, opts...)
	if err != nil {
		return err
	}

	var runErr error
	h := scanner.Start(ctx, portscan.ListenerFuncs{
		Result: func(port int, open bool) {
			if !open {
				return
			}
			r.output.Write(r.id, "port", portResult{Host: target.String(), Port: port, Open: true},
				fmt.Sprintf("%s:%d", target, port))
		},
		Finished: func(openPorts []int) {
			gologger.Info().Msgf("[%s] %d open %s ports on %s", r.id, len(openPorts), method, target)
		},
		Error: func(err error) { runErr = err },
	})
	h.Wait()
	return runErr
}

func (r *Runner) runSweep(ctx context.Context) error {
	opts := []subnet.Option{
		subnet.WithProber(r.prober),
		subnet.WithDisableProcNet(r.options.DisableProcNet),
		subnet.WithPrioritizedOrder(r.options.Prioritize),
	}
	if r.options.Workers > 0 {
		opts = append(opts, subnet.WithWorkers(r.options.Workers))
	}
	if r.options.Timeout > 0 {
		opts = append(opts, subnet.WithTimeout(r.options.Timeout))
	}

	var (
		sweeper *subnet.Sweeper
		err     error
	)
	switch {
	case len(r.options.SweepList) > 0:
		sweeper, err = subnet.FromIPList(r.options.SweepList, opts...)
	case strings.EqualFold(r.options.Sweep, LocalSweep):
		sweeper, err = subnet.FromLocalAddress(ctx, opts...)
	default:
		sweeper, err = subnet.FromIPAddress(ctx, r.options.Sweep, opts...)
	}
	if err != nil {
		return err
	}

	h := sweeper.Start(ctx, subnet.ListenerFuncs{
		DeviceFound: func(d subnet.Device) {
			gologger.Verbose().Msgf("[%s] found %s", r.id, d.IP)
		},
		Finished: func(devices []subnet.Device) {
			// reported after the sweep so the MACs learned while probing are included
			for _, d := range devices {
				r.output.Write(r.id, "device", d, d.String())
			}
			gologger.Info().Msgf("[%s] %d devices found out of %d addresses", r.id, len(devices), len(sweeper.Addresses()))
		},
	})
	h.Wait()
	return nil
}

func (r *Runner) runTrace(ctx context.Context) error {
	target, err := common.NewTarget(r.options.Trace)
	if err != nil {
		return err
	}
	opts := []traceroute.Option{traceroute.WithMaxHops(r.options.MaxHops)}
	if r.options.Timeout > 0 {
		opts = append(opts, traceroute.WithTimeout(r.options.Timeout))
	}
	tracer, err := traceroute.New(target, opts...)
	if err != nil {
		return err
	}

	var runErr error
	h := tracer.Start(ctx, traceroute.ListenerFuncs{
		Hop: func(hop traceroute.Hop) {
			r.output.Write(r.id, "hop", hop, hop.String())
		},
		Finished: func(hops []traceroute.Hop) {
			if len(hops) == 0 || !hops[len(hops)-1].Destination {
				gologger.Warning().Msgf("[%s] %s was not reached", r.id, target)
			}
		},
		Error: func(err error) { runErr = err },
	})
	h.Wait()
	return runErr
}

// wakeResult is the json form of a sent wake packet
type wakeResult struct {
	MAC     string `json:"mac"`
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	Packets int    `json:"packets"`
}

func (r *Runner) runWake(ctx context.Context) error {
	opts := []wol.Option{wol.WithPort(r.options.WakePort), wol.WithPackets(r.options.WakePackets)}
	if r.options.Timeout > 0 {
		opts = append(opts, wol.WithTimeout(r.options.Timeout))
	}
	if err := wol.Send(ctx, r.options.WakeIP, r.options.Wake, opts...); err != nil {
		return err
	}

	result := wakeResult{MAC: r.options.Wake, IP: r.options.WakeIP, Port: r.options.WakePort, Packets: r.options.WakePackets}
	r.output.Write(r.id, "wake", result,
		fmt.Sprintf("sent %d wake packets for %s to %s:%d", result.Packets, result.MAC, result.IP, result.Port))
	return nil
}
