package topoload

import (
	"strings"
	"testing"

	"github.com/iti/netsim/internal/topology"
)

const threeMachineMatrix = `,M1,M2,M3,R1
M1,?,?,?,1
M2,?,?,?,1
M3,?,?,?,1
R1,1,1,1,?
`

func TestLoadTopologyBasicStar(t *testing.T) {
	topo, err := LoadTopology(strings.NewReader(threeMachineMatrix), topology.ListTableKind)
	if err != nil {
		t.Fatalf("LoadTopology: %v", err)
	}
	if topo.Index.Len() != 4 {
		t.Fatalf("expected 4 devices, got %d", topo.Index.Len())
	}
	if err := topo.ValidateMachineEdges(); err != nil {
		t.Fatalf("unexpected validation failure: %v", err)
	}

	m1Idx, _ := topo.Index.Lookup("M1")
	r1Idx, _ := topo.Index.Lookup("R1")
	edge, ok := topo.Graph.GetEdge(m1Idx, r1Idx)
	if !ok || edge.Weight != 1 {
		t.Fatalf("M1-R1 edge = %+v ok=%v, want weight 1", edge, ok)
	}
}

func TestLoadTopologyRejectsDuplicateAddress(t *testing.T) {
	matrix := ",M1,M1\nM1,?,1\nM1,1,?\n"
	if _, err := LoadTopology(strings.NewReader(matrix), topology.ListTableKind); err == nil {
		t.Fatal("expected fatal error for duplicate address")
	}
}

func TestLoadTopologyRejectsUnknownPrefix(t *testing.T) {
	matrix := ",X1,R1\nX1,?,1\nR1,1,?\n"
	if _, err := LoadTopology(strings.NewReader(matrix), topology.ListTableKind); err == nil {
		t.Fatal("expected fatal error for unknown device prefix")
	}
}

func TestLoadTopologyRejectsOutOfRangeWeight(t *testing.T) {
	matrix := ",M1,R1\nM1,?,X\nR1,X,?\n"
	if _, err := LoadTopology(strings.NewReader(matrix), topology.ListTableKind); err == nil {
		t.Fatal("expected fatal error for malformed weight cell")
	}
}

func TestLoadMessagesHappyPath(t *testing.T) {
	data := "1:5:M1:M2:hello\n2:1:M2:M1:world\n"
	records, err := LoadMessages(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Priority != 5 || records[0].Payload != "hello" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestLoadMessagesRejectsMalformedLine(t *testing.T) {
	data := "1:5:M1:M2\n" // missing payload field
	if _, err := LoadMessages(strings.NewReader(data)); err == nil {
		t.Fatal("expected error for malformed message line")
	}
}

func TestLoadMessagesRejectsNonMachineSrc(t *testing.T) {
	data := "1:5:R1:M2:hello\n"
	if _, err := LoadMessages(strings.NewReader(data)); err == nil {
		t.Fatal("expected error when src is not a machine address")
	}
}

func TestLoadRoutingFields(t *testing.T) {
	data := "M1:R1\nM2:R2\n"
	records, err := LoadRoutingFields(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadRoutingFields: %v", err)
	}
	if len(records) != 2 || records[1].Dest != "M2" || records[1].Next != "R2" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoadEdgeChangeFileDiffsAgainstCurrent(t *testing.T) {
	topo, err := LoadTopology(strings.NewReader(threeMachineMatrix), topology.ListTableKind)
	if err != nil {
		t.Fatalf("LoadTopology: %v", err)
	}

	changed := `,M1,M2,M3,R1
M1,?,?,?,1
M2,?,?,?,1
M3,?,?,?,1
R1,1,1,9,?
`
	changes, err := LoadEdgeChangeFile(strings.NewReader(changed), topo)
	if err != nil {
		t.Fatalf("LoadEdgeChangeFile: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected exactly one differing cell, got %d: %+v", len(changes), changes)
	}
	if changes[0].Weight != 9 {
		t.Fatalf("expected differing weight 9, got %v", changes[0].Weight)
	}
}

func TestLoadEdgeChangeFileRejectsUnknownAddress(t *testing.T) {
	topo, err := LoadTopology(strings.NewReader(threeMachineMatrix), topology.ListTableKind)
	if err != nil {
		t.Fatalf("LoadTopology: %v", err)
	}
	bad := ",M1,M9\nM1,?,1\nM9,1,?\n"
	if _, err := LoadEdgeChangeFile(strings.NewReader(bad), topo); err == nil {
		t.Fatal("expected parse error for unknown address in edge-change file")
	}
}
