package topology

import "github.com/iti/netsim/internal/container"

// TableKind selects a router's routing-table representation, chosen once
// at process startup and held uniformly across every router in the
// topology (spec.md §3, §6 startup menu).
type TableKind int

const (
	ListTableKind TableKind = iota
	TreeTableKind
)

// RoutingTable is a dest -> next-hop mapping realized as either an
// insertion-ordered list or a splay-tree ordered map. Both representations
// resolve `change rt remove` by dest alone (spec.md §9's resolution of the
// source's list-vs-tree remove-semantics inconsistency).
type RoutingTable interface {
	// Lookup returns the next hop recorded for dest, and whether dest has
	// an entry at all.
	Lookup(dest Address) (Address, bool)
	// Add inserts a fresh (dest, next) pair, or overwrites next if dest is
	// already present. Add cannot fail (spec.md §4.7).
	Add(field RoutingField)
	// RemoveByDest deletes the entry for dest, reporting whether one
	// existed.
	RemoveByDest(dest Address) bool
	// Entries returns every (dest, next) pair presently stored.
	Entries() []RoutingField
	// Clone deep-copies the table so a caller can snapshot-and-restore
	// around a batch of edits (spec.md §4.7 `change rt` rollback).
	Clone() RoutingTable
	// Kind reports which representation backs this table.
	Kind() TableKind
}

// listTable is the insertion-ordered list representation: routing_decision
// does a linear scan for a matching dest.
type listTable struct {
	fields []RoutingField
}

// NewListTable constructs an empty list-form routing table.
func NewListTable() RoutingTable {
	return &listTable{}
}

func (t *listTable) Lookup(dest Address) (Address, bool) {
	dest = dest.Canonical()
	for _, f := range t.fields {
		if f.Dest == dest {
			return f.Next, true
		}
	}
	return "", false
}

func (t *listTable) Add(field RoutingField) {
	field.Dest = field.Dest.Canonical()
	field.Next = field.Next.Canonical()
	for i, f := range t.fields {
		if f.Dest == field.Dest {
			t.fields[i].Next = field.Next
			return
		}
	}
	t.fields = append(t.fields, field)
}

func (t *listTable) RemoveByDest(dest Address) bool {
	dest = dest.Canonical()
	for i, f := range t.fields {
		if f.Dest == dest {
			t.fields = append(t.fields[:i], t.fields[i+1:]...)
			return true
		}
	}
	return false
}

func (t *listTable) Entries() []RoutingField {
	out := make([]RoutingField, len(t.fields))
	copy(out, t.fields)
	return out
}

func (t *listTable) Clone() RoutingTable {
	clone := &listTable{fields: make([]RoutingField, len(t.fields))}
	copy(clone.fields, t.fields)
	return clone
}

func (t *listTable) Kind() TableKind {
	return ListTableKind
}

// treeTable is the ordered-map representation: routing_decision splay-
// searches the key, which is itself a read-triggered structural mutation
// (container.SplayMap's documented semantics).
type treeTable struct {
	tree *container.SplayMap[Address, Address]
}

// NewTreeTable constructs an empty tree-form routing table.
func NewTreeTable() RoutingTable {
	return &treeTable{tree: container.NewSplayMap[Address, Address]()}
}

func (t *treeTable) Lookup(dest Address) (Address, bool) {
	return t.tree.Search(dest.Canonical())
}

func (t *treeTable) Add(field RoutingField) {
	dest, next := field.Dest.Canonical(), field.Next.Canonical()
	if !t.tree.Insert(dest, next) {
		// Insert reports false on a pre-existing key without changing its
		// value; a duplicate dest must still overwrite Next per spec.md §3.
		t.tree.Remove(dest)
		t.tree.Insert(dest, next)
	}
}

func (t *treeTable) RemoveByDest(dest Address) bool {
	return t.tree.Remove(dest.Canonical())
}

func (t *treeTable) Entries() []RoutingField {
	entries := t.tree.Walk()
	out := make([]RoutingField, len(entries))
	for i, e := range entries {
		out[i] = RoutingField{Dest: e.Key, Next: e.Value}
	}
	return out
}

func (t *treeTable) Clone() RoutingTable {
	return &treeTable{tree: t.tree.Clone()}
}

func (t *treeTable) Kind() TableKind {
	return TreeTableKind
}

// NewRoutingTable constructs an empty routing table in the representation
// named by kind.
func NewRoutingTable(kind TableKind) RoutingTable {
	switch kind {
	case TreeTableKind:
		return NewTreeTable()
	default:
		return NewListTable()
	}
}
