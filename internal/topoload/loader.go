// Package topoload parses the simulator's text file formats (spec.md §6)
// into typed records the core topology package consumes. It is the Go
// realization of the "file loaders feed typed records into the core"
// external collaborator named in spec.md §1.
package topoload

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iti/netsim/internal/topology"
)

// LoadTopology parses an adjacency-matrix CSV (spec.md §4.4, §6) from r
// into a freshly built Topology using the given routing-table
// representation. The first row is a header of column addresses; each
// subsequent row starts with a device address followed by one cell per
// column, each either "?" or a single decimal digit 0-9.
func LoadTopology(r io.Reader, kind topology.TableKind) (*topology.Topology, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, topology.NewFatalError("load-topology", err)
	}
	if len(rows) < 2 {
		return nil, topology.NewFatalError("load-topology", fmt.Errorf("matrix must have a header row and at least one device row"))
	}

	header := rows[0]
	columns := header[1:] // header[0] is a label for the row-address column, ignored

	topo := topology.NewTopology(kind)
	addrToIdx := make(map[topology.Address]int, len(rows)-1)

	// first pass: create every device named in the row addresses, in file
	// order, so vertex indices are stable and match csv row order.
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		addr := topology.Address(row[0]).Canonical()
		if _, dup := addrToIdx[addr]; dup {
			return nil, topology.NewFatalError("load-topology", fmt.Errorf("duplicate address %s", addr))
		}

		dev, err := newDeviceForAddress(addr, kind)
		if err != nil {
			return nil, topology.NewFatalError("load-topology", err)
		}
		addrToIdx[addr] = topo.AddDevice(dev)
	}

	// second pass: every column address must itself be a known device
	// (the matrix is square in its data region, spec.md §6).
	for _, col := range columns {
		addr := topology.Address(col).Canonical()
		if _, ok := addrToIdx[addr]; !ok {
			return nil, topology.NewFatalError("load-topology", fmt.Errorf("column address %s has no matching row", addr))
		}
	}

	// third pass: cells encode edges.
	for rowIdx, row := range rows[1:] {
		rowAddr := topology.Address(row[0]).Canonical()
		srcIdx := addrToIdx[rowAddr]
		cells := row[1:]
		if len(cells) != len(columns) {
			return nil, topology.NewFatalError("load-topology",
				fmt.Errorf("row %d (%s) has %d cells, want %d", rowIdx+1, rowAddr, len(cells), len(columns)))
		}
		for colIdx, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "?" || cell == "" {
				continue
			}
			weight, err := parseCellWeight(cell)
			if err != nil {
				return nil, topology.NewFatalError("load-topology", fmt.Errorf("row %s col %s: %w", rowAddr, columns[colIdx], err))
			}
			colAddr := topology.Address(columns[colIdx]).Canonical()
			dstIdx := addrToIdx[colAddr]
			topo.Graph.InsertEdge(srcIdx, dstIdx, weight)
		}
	}

	return topo, nil
}

// parseCellWeight validates that cell is a single decimal digit, the
// tightened range spec.md §9 adopts in place of the source's unchecked
// ASCII-subtraction parse.
func parseCellWeight(cell string) (float64, error) {
	if len(cell) != 1 || cell[0] < '0' || cell[0] > '9' {
		return 0, fmt.Errorf("weight cell %q must be a single digit 0-9", cell)
	}
	return float64(cell[0] - '0'), nil
}

func newDeviceForAddress(addr topology.Address, kind topology.TableKind) (topology.Device, error) {
	k, ok := addr.Kind()
	if !ok {
		return nil, fmt.Errorf("address %s has unrecognized device prefix (want M or R)", addr)
	}
	switch k {
	case topology.MachineKind:
		return topology.NewMachine(addr), nil
	case topology.RouterKind:
		return topology.NewRouter(addr, kind), nil
	default:
		return nil, fmt.Errorf("address %s has unrecognized device prefix (want M or R)", addr)
	}
}

// MessageRecord is one parsed line of a message file (spec.md §6):
// "id:priority:src:dst:payload".
type MessageRecord struct {
	ID       int
	Priority int
	Src      topology.Address
	Dst      topology.Address
	Payload  string
}

// LoadMessages parses a message file. Any malformed line aborts the load
// with a diagnostic and no messages are returned, per spec.md §6.
func LoadMessages(r io.Reader) ([]MessageRecord, error) {
	lines, err := readNonEmptyLines(r)
	if err != nil {
		return nil, err
	}

	records := make([]MessageRecord, 0, len(lines))
	for lineNo, line := range lines {
		fields := strings.Split(line, ":")
		if len(fields) != 5 {
			return nil, fmt.Errorf("message file line %d: want 5 colon-separated fields, got %d", lineNo+1, len(fields))
		}
		id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("message file line %d: bad id: %w", lineNo+1, err)
		}
		priority, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("message file line %d: bad priority: %w", lineNo+1, err)
		}
		src := topology.Address(strings.TrimSpace(fields[2])).Canonical()
		dst := topology.Address(strings.TrimSpace(fields[3])).Canonical()
		if k, ok := src.Kind(); !ok || k != topology.MachineKind {
			return nil, fmt.Errorf("message file line %d: src %s is not a machine address", lineNo+1, src)
		}
		if k, ok := dst.Kind(); !ok || k != topology.MachineKind {
			return nil, fmt.Errorf("message file line %d: dst %s is not a machine address", lineNo+1, dst)
		}
		records = append(records, MessageRecord{
			ID:       id,
			Priority: priority,
			Src:      src,
			Dst:      dst,
			Payload:  fields[4],
		})
	}
	return records, nil
}

// RoutingFieldRecord is one parsed line of a routing-table input file
// (spec.md §6): "dest:next".
type RoutingFieldRecord struct {
	Dest topology.Address
	Next topology.Address
}

// LoadRoutingFields parses a routing-table input file used by `change rt
// add`. Any malformed line aborts the operation, per spec.md §6.
func LoadRoutingFields(r io.Reader) ([]RoutingFieldRecord, error) {
	lines, err := readNonEmptyLines(r)
	if err != nil {
		return nil, err
	}

	records := make([]RoutingFieldRecord, 0, len(lines))
	for lineNo, line := range lines {
		fields := strings.Split(line, ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("routing-table file line %d: want 2 colon-separated fields, got %d", lineNo+1, len(fields))
		}
		records = append(records, RoutingFieldRecord{
			Dest: topology.Address(strings.TrimSpace(fields[0])).Canonical(),
			Next: topology.Address(strings.TrimSpace(fields[1])).Canonical(),
		})
	}
	return records, nil
}

// EdgeChangeRecord is one cell of a bulk `change edge <file>` matrix that
// differs from the graph's current weight.
type EdgeChangeRecord struct {
	A, B   topology.Address
	Weight float64
}

// LoadEdgeChangeFile parses a full adjacency matrix for the bulk `change
// edge <file>` command. For each cell that differs from the graph's
// current weight, it queues an EdgeChangeRecord. A malformed weight or an
// out-of-range vertex reference is a parse error with nothing applied
// (spec.md §4.7).
func LoadEdgeChangeFile(r io.Reader, topo *topology.Topology) ([]EdgeChangeRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse edge-change file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("edge-change matrix must have a header row and at least one device row")
	}

	header := rows[0]
	columns := header[1:]

	var changes []EdgeChangeRecord
	for rowIdx, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		rowAddr := topology.Address(row[0]).Canonical()
		rowIdxVertex, ok := topo.Index.Lookup(rowAddr)
		if !ok {
			return nil, fmt.Errorf("edge-change row %d: unknown address %s", rowIdx+1, rowAddr)
		}

		cells := row[1:]
		if len(cells) != len(columns) {
			return nil, fmt.Errorf("edge-change row %d (%s) has %d cells, want %d", rowIdx+1, rowAddr, len(cells), len(columns))
		}

		for colIdx, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "?" || cell == "" {
				continue
			}
			weight, err := parseCellWeight(cell)
			if err != nil {
				return nil, fmt.Errorf("edge-change row %s col %s: %w", rowAddr, columns[colIdx], err)
			}

			colAddr := topology.Address(columns[colIdx]).Canonical()
			colIdxVertex, ok := topo.Index.Lookup(colAddr)
			if !ok {
				return nil, fmt.Errorf("edge-change column %s: unknown address", colAddr)
			}

			if edge, present := topo.Graph.GetEdge(rowIdxVertex, colIdxVertex); present && edge.Weight == weight {
				continue
			}
			changes = append(changes, EdgeChangeRecord{A: rowAddr, B: colAddr, Weight: weight})
		}
	}
	return changes, nil
}

func readNonEmptyLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
