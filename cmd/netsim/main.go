// Command netsim is the operator shell: it loads a topology, presents the
// startup menu spec.md §6 names, and dispatches the command surface over
// stdin. Grounded on mrnes.go's BuildExperimentNet as the top-level wiring
// function, generalized into netsim.New, with a bufio.Scanner command loop
// standing in for the shell-parsing collaborator spec.md §1 treats as thin
// (no REPL/shell library appears anywhere in the retrieval pack, so this
// layer stays on the standard library per DESIGN.md).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iti/netsim/internal/mutate"
	"github.com/iti/netsim/internal/netsim"
	"github.com/iti/netsim/internal/topoload"
	"github.com/iti/netsim/internal/topology"
	"github.com/iti/netsim/pkg/netsimcfg"
	"github.com/iti/netsim/pkg/netsimlog"
)

func main() {
	configPath := flag.String("config", "", "path to a netsim YAML config file")
	flag.Parse()

	cfg, err := netsimcfg.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	log := netsimlog.New(cfg.LogLevel, os.Stderr)
	scanner := bufio.NewScanner(os.Stdin)

	tableChoice := cfg.TableKind
	if tableChoice == "" {
		fmt.Println("select routing-table representation: 1 = list, 2 = tree")
		if scanner.Scan() {
			tableChoice = strings.TrimSpace(scanner.Text())
		}
	}
	kind, err := netsimcfg.ResolveTableKind(tableChoice)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	topoFile, err := os.Open(cfg.TopologyFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal: open topology file:", err)
		os.Exit(1)
	}
	sim, err := netsim.New(topoFile, kind, cfg.PathLogFile, log)
	topoFile.Close()
	if err != nil {
		log.WithError(err).Error("fatal: could not build simulation")
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	fmt.Println("loaded topology:", sim.String())
	runShell(sim, scanner)
}

// runShell reads and dispatches commands until `exit`, per spec.md §6's
// command surface and §5's "commands other than p/q are ignored while the
// worker runs" discipline.
func runShell(sim *netsim.Simulation, scanner *bufio.Scanner) {
	for {
		fmt.Print("netsim> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])

		// p and q are checked before Running: Running takes the control
		// plane's lock, which this goroutine already holds while paused.
		if cmd != "p" && cmd != "q" && (sim.Plane.LockFlag() || sim.Running()) {
			fmt.Println("simulation running: command ignored (only p/q are accepted)")
			continue
		}

		switch cmd {
		case "exit":
			if sim.Running() {
				fmt.Println("cannot exit while a simulation is running")
				continue
			}
			return
		case "p":
			if sim.Pause() {
				fmt.Println("paused")
			} else {
				fmt.Println("resumed")
			}
		case "q":
			sim.Stop()
			fmt.Println("stop requested")
		case "send":
			dispatchSendMsg(sim, fields)
		case "change":
			dispatchChange(sim, fields)
		case "print":
			dispatchPrintPath(sim, fields)
		default:
			fmt.Println("unrecognized command:", cmd)
		}
	}
}

func dispatchSendMsg(sim *netsim.Simulation, fields []string) {
	if len(fields) != 3 || strings.ToLower(fields[1]) != "msg" {
		fmt.Println("usage: send msg <file>")
		return
	}
	f, err := os.Open(fields[2])
	if err != nil {
		fmt.Println("send msg:", err)
		return
	}
	defer f.Close()

	queued, warning, err := sim.SendMsg(f)
	if err != nil {
		fmt.Println("send msg:", err)
		return
	}
	if warning != "" {
		fmt.Println("send msg:", warning)
		return
	}
	fmt.Printf("send msg: %d messages queued, simulation started\n", queued)
}

func dispatchChange(sim *netsim.Simulation, fields []string) {
	if len(fields) < 2 {
		fmt.Println("usage: change rt|edge ...")
		return
	}
	switch strings.ToLower(fields[1]) {
	case "rt":
		dispatchChangeRoutingTable(sim, fields)
	case "edge":
		dispatchChangeEdge(sim, fields)
	default:
		fmt.Println("usage: change rt|edge ...")
	}
}

func dispatchChangeRoutingTable(sim *netsim.Simulation, fields []string) {
	if len(fields) != 5 {
		fmt.Println("usage: change rt <router> add|remove <file>")
		return
	}
	router := topology.Address(fields[2])
	var kind mutate.RoutingEditKind
	switch strings.ToLower(fields[3]) {
	case "add":
		kind = mutate.RoutingAdd
	case "remove":
		kind = mutate.RoutingRemove
	default:
		fmt.Println("usage: change rt <router> add|remove <file>")
		return
	}

	f, err := os.Open(fields[4])
	if err != nil {
		fmt.Println("change rt:", err)
		return
	}
	defer f.Close()

	records, err := topoload.LoadRoutingFields(f)
	if err != nil {
		fmt.Println("change rt:", err)
		return
	}
	if err := sim.ChangeRoutingTable(router, kind, records); err != nil {
		fmt.Println("change rt:", err)
		return
	}
	fmt.Println("change rt: applied")
}

func dispatchChangeEdge(sim *netsim.Simulation, fields []string) {
	// `change edge <A>, <B>, <w>` (3 args) or `change edge <file>` (1 arg).
	rest := strings.Join(fields[2:], " ")
	parts := strings.Split(rest, ",")
	if len(parts) == 3 {
		a := topology.Address(strings.TrimSpace(parts[0]))
		b := topology.Address(strings.TrimSpace(parts[1]))
		weight, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			fmt.Println("change edge:", err)
			return
		}
		if err := sim.ChangeEdge(a, b, weight); err != nil {
			fmt.Println("change edge:", err)
			return
		}
		fmt.Println("change edge: applied, routing tables re-planned")
		return
	}

	if len(fields) != 3 {
		fmt.Println("usage: change edge <A>, <B>, <w>  |  change edge <file>")
		return
	}
	f, err := os.Open(fields[2])
	if err != nil {
		fmt.Println("change edge:", err)
		return
	}
	defer f.Close()

	applied, warning, err := sim.ChangeEdgeFile(f)
	if err != nil {
		fmt.Println("change edge:", err)
		return
	}
	if warning != "" {
		fmt.Println("change edge:", warning)
		return
	}
	fmt.Printf("change edge: %d changed cells applied, routing tables re-planned\n", applied)
}

func dispatchPrintPath(sim *netsim.Simulation, fields []string) {
	// `print path <src>|* to <dst>|*`
	if len(fields) != 5 || strings.ToLower(fields[1]) != "path" || strings.ToLower(fields[3]) != "to" {
		fmt.Println("usage: print path <src>|* to <dst>|*")
		return
	}
	lines, err := sim.PrintPath(fields[2], fields[4])
	if err != nil {
		fmt.Println("print path:", err)
		return
	}
	if len(lines) == 0 {
		fmt.Println("print path: no matching lines")
		return
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}
