package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/utils/batcher"
)

// Event is one json output line
type Event struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// OutputWriter prints results as plain text or buffered json lines.
type OutputWriter struct {
	json    bool
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	batcher *batcher.Batcher[[]byte]
}

// NewOutputWriter writes to path. Without a path plain results go to the
// logger's silent level and json lines to stdout.
func NewOutputWriter(path string, jsonLines bool, batchSize int, flushInterval time.Duration) (*OutputWriter, error) {
	var (
		w      io.Writer
		closer io.Closer
	)
	switch {
	case path != "":
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("could not create output file: %w", err)
		}
		w, closer = f, f
	case jsonLines:
		w = os.Stdout
	}
	ow := newOutputWriter(w, jsonLines, batchSize, flushInterval)
	ow.closer = closer
	return ow, nil
}

func newOutputWriter(w io.Writer, jsonLines bool, batchSize int, flushInterval time.Duration) *OutputWriter {
	ow := &OutputWriter{json: jsonLines, w: w}
	if jsonLines {
		ow.batcher = batcher.New(
			batcher.WithMaxCapacity[[]byte](batchSize),
			batcher.WithFlushInterval[[]byte](flushInterval),
			batcher.WithFlushCallback[[]byte](ow.flush),
		)
		go ow.batcher.Run()
	}
	return ow
}

// Write emits one result. plain is the text form used without -json.
func (ow *OutputWriter) Write(runID, kind string, data any, plain string) {
	if !ow.json {
		gologger.Silent().Msg(plain)
		if ow.w != nil {
			ow.mu.Lock()
			_, _ = fmt.Fprintln(ow.w, plain)
			ow.mu.Unlock()
		}
		return
	}

	line, err := json.Marshal(Event{RunID: runID, Type: kind, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		gologger.Warning().Msgf("could not marshal %s result: %v", kind, err)
		return
	}
	ow.batcher.Append(line)
}

func (ow *OutputWriter) flush(lines [][]byte) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	for _, line := range lines {
		if _, err := ow.w.Write(append(line, '\n')); err != nil {
			gologger.Error().Msgf("could not write output: %v", err)
			return
		}
	}
}

// Close flushes buffered lines and closes the output file.
func (ow *OutputWriter) Close() {
	if ow.batcher != nil {
		ow.batcher.Stop()
		ow.batcher.WaitDone()
	}
	if ow.closer != nil {
		_ = ow.closer.Close()
	}
}
