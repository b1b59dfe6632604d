package ping

import (
	"math"
	"net"
	"regexp"
	"strconv"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
)

const (
	platformLinux   = "linux"
	platformDarwin  = "darwin"
	platformWindows = "windows"
)

// Failure reasons reported by the native probe
const (
	ReasonTotalLoss   = "100% packet loss"
	ReasonPartialLoss = "partial packet loss"
	ReasonUnknownHost = "unknown host"
	ReasonUnknown     = "unknown error"
	ReasonInterrupted = "Interrupted"
	ReasonTimedOut    = "Timed Out"
)

var (
	lossPattern   = regexp.MustCompile(`([\d.]+)% (?:packet )?loss`)
	rttPattern    = regexp.MustCompile(`= ([\d.]+)/([\d.]+)/([\d.]+)`)
	windowsRTT    = regexp.MustCompile(`Average = (\d+)ms`)
	unknownHostRe = regexp.MustCompile(`(?i)unknown host|cannot resolve|name or service not known|could not find host|failure in name resolution|no address associated`)
)

func currentPlatform() string {
	switch {
	case osutils.IsWindows():
		return platformWindows
	case osutils.IsOSX():
		return platformDarwin
	default:
		return platformLinux
	}
}

// NativeCommand returns the ping invocation for a single echo request on
// the running platform.
func NativeCommand(ip net.IP, opts Options) (name string, args []string) {
	return nativeCommand(currentPlatform(), ip, opts)
}

func nativeCommand(platform string, ip net.IP, opts Options) (string, []string) {
	addr := ip.String()
	ttl := strconv.Itoa(opts.TTL)
	millis := strconv.FormatInt(opts.Timeout.Milliseconds(), 10)
	ipv6 := ip.To4() == nil

	switch platform {
	case platformWindows:
		args := []string{"-n", "1", "-w", millis, "-i", ttl}
		if ipv6 {
			args = append(args, "-6")
		}
		return "ping", append(args, addr)
	case platformDarwin:
		if ipv6 {
			return "ping6", []string{"-c", "1", "-h", ttl, addr}
		}
		return "ping", []string{"-c", "1", "-W", millis, "-m", ttl, addr}
	default:
		seconds := strconv.Itoa(int(math.Ceil(opts.Timeout.Seconds())))
		args := []string{"-c", "1", "-W", seconds, "-t", ttl}
		if ipv6 {
			// iputils merged ping6 into ping
			args = append(args, "-6")
		}
		return "ping", append(args, addr)
	}
}

// parseNativeOutput classifies ping output. ok is true when the echo was
// answered; elapsed is zero when no round-trip time could be read.
func parseNativeOutput(output string) (ok bool, elapsed time.Duration, reason string) {
	if match := lossPattern.FindStringSubmatch(output); match != nil {
		loss, err := strconv.ParseFloat(match[1], 64)
		switch {
		case err != nil:
		case loss == 0:
			return true, parseRTT(output), ""
		case loss >= 100:
			return false, 0, ReasonTotalLoss
		default:
			return false, 0, ReasonPartialLoss
		}
	}
	if unknownHostRe.MatchString(output) {
		return false, 0, ReasonUnknownHost
	}
	return false, 0, ReasonUnknown
}

func parseRTT(output string) time.Duration {
	if match := rttPattern.FindStringSubmatch(output); match != nil {
		if avg, err := strconv.ParseFloat(match[2], 64); err == nil {
			return time.Duration(avg * float64(time.Millisecond))
		}
	}
	if match := windowsRTT.FindStringSubmatch(output); match != nil {
		if avg, err := strconv.Atoi(match[1]); err == nil {
			return time.Duration(avg) * time.Millisecond
		}
	}
	return 0
}

