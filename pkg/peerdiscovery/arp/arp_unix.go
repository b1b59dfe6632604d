//go:build !windows

package arp

import (
	"context"
	"fmt"

	osutils "github.com/projectdiscovery/utils/os"
)

func (r *Reader) readSources(ctx context.Context) []sourceResult {
	if osutils.IsLinux() {
		if r.DisableProcNet {
			return []sourceResult{r.readNeighborTable(ctx)}
		}
		proc := r.readProcNet()
		if proc.err == nil {
			return []sourceResult{proc}
		}
		// keep the proc error so it is logged and joined when both fail
		return []sourceResult{proc, r.readNeighborTable(ctx)}
	}
	if osutils.IsOSX() {
		return []sourceResult{r.readArpCommand(ctx)}
	}
	// BSDs ship the same arp -a format as macOS
	result := r.readArpCommand(ctx)
	if result.err != nil {
		result.err = fmt.Errorf("unsupported OS: %w", result.err)
	}
	return []sourceResult{result}
}
