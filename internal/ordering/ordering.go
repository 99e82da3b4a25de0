// Package ordering implements a precedence-ordered list for configuration
// features. Items are registered with an optional "insert after" constraint
// naming the kind of a previously registered item, and the list materializes
// a deterministic traversal order on every insertion.
package ordering

// Item is an element that can participate in precedence ordering. Kind is the
// stable identifier other items name in their after constraint. Equivalent
// items share a kind, so a dependent attaches to whichever instance of that
// kind is reached first in the traversal.
type Item interface {
	Kind() string
}

// Root is the after key for items with no declared predecessor.
const Root = ""

// List maintains items with insert-after relationships and exposes a stable
// total order. The order is re-resolved synchronously on every Add, so
// iteration is always a plain read over the current materialized sequence.
//
// A List is not safe for concurrent use. It is meant to be populated once at
// application configuration time and read afterwards.
type List struct {
	deps    map[string][]Item
	added   []Item
	ordered []Item
}

// New creates an empty list.
func New() *List {
	return &List{deps: make(map[string][]Item)}
}

// Add registers item, attaching it as a dependent of the given kind. Pass
// Root to place the item at the top level. Siblings keep their insertion
// order. An item whose after kind is never reached from the root is omitted
// from Items; see Unreachable.
func (l *List) Add(item Item, after string) {
	l.deps[after] = append(l.deps[after], item)
	l.added = append(l.added, item)
	l.resolve()
}

// Items returns the materialized order. The returned slice is owned by the
// list and must not be modified.
func (l *List) Items() []Item {
	return l.ordered
}

// Len returns the number of items in the materialized order. Unreachable
// items are not counted.
func (l *List) Len() int {
	return len(l.ordered)
}

// Unreachable returns, in insertion order, the items omitted from Items
// because their after kind was never reached from the root. A dependency
// cycle shows up here as well: every item on the cycle is unreachable.
func (l *List) Unreachable() []Item {
	emitted := make(map[Item]struct{}, len(l.ordered))
	for _, item := range l.ordered {
		emitted[item] = struct{}{}
	}

	var missing []Item
	for _, item := range l.added {
		if _, ok := emitted[item]; !ok {
			missing = append(missing, item)
		}
	}
	return missing
}

// resolve rebuilds the ordered sequence. The walk starts from the root key
// and, after emitting an item, prepends that item's dependents (looked up by
// its kind) to the visit queue so they form a contiguous block immediately
// after their anchor. Each predecessor key is consumed at most once, which
// makes the walk terminate even if the declared constraints contain a cycle.
func (l *List) resolve() {
	l.ordered = make([]Item, 0, len(l.added))

	pending := make(map[string][]Item, len(l.deps))
	for key, items := range l.deps {
		pending[key] = items
	}

	queue := append([]Item(nil), pending[Root]...)
	delete(pending, Root)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		l.ordered = append(l.ordered, current)

		dependents := pending[current.Kind()]
		delete(pending, current.Kind())
		if len(dependents) > 0 {
			queue = append(append([]Item(nil), dependents...), queue...)
		}
	}
}
