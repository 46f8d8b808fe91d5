// Package pathlog implements the append-only path log the forwarding
// engine writes deliveries to and the `print path` command queries,
// grounded on the teacher's TraceManager.WriteToFile append/query pattern
// (trace.go), narrowed to the plain "id:hop:hop:...:hop" line format
// spec.md §6 specifies.
package pathlog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Log is an append-only file of delivery records, one "id:hop:...:hop"
// line per successful delivery.
type Log struct {
	mu   sync.Mutex
	path string
}

// New constructs a Log writing to the file at path. New does not touch the
// file; the first Append creates it if absent, and nothing is truncated,
// matching an append-only contract across process restarts.
func New(path string) *Log {
	return &Log{path: path}
}

// Append writes one delivery line to the log.
func (l *Log) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open path log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("write path log: %w", err)
	}
	return nil
}

// Query returns every line whose first hop matches src (or "*") and whose
// last hop matches dst (or "*"), in file order (spec.md §4.7 `print
// path`). A file-open failure is a soft warning (spec.md §7): Query
// returns a nil slice and nil error when the log does not yet exist.
func (l *Log) Query(src, dst string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open path log: %w", err)
	}
	defer f.Close()

	var matches []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hops := strings.Split(line, ":")
		// hops[0] is the message id; the hop sequence starts at hops[1].
		if len(hops) < 2 {
			continue
		}
		first, last := hops[1], hops[len(hops)-1]
		if (src == "*" || strings.EqualFold(src, first)) &&
			(dst == "*" || strings.EqualFold(dst, last)) {
			matches = append(matches, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan path log: %w", err)
	}
	return matches, nil
}
