//go:build windows

package arp

import "context"

func (r *Reader) readSources(ctx context.Context) []sourceResult {
	return []sourceResult{r.readArpCommand(ctx)}
}
