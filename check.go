package chainz

import "fmt"

// Check validates a node sequence before any node is initialized.
//
// Every entry must be a non-nil Node, and for every adjacent pair (A, B) the
// declared output of A must be Compatible with the declared input of B. Only
// the outer declared types are compared; record fields are never inspected.
// Check stops at the first violation and returns a *CompositionError naming
// both nodes and both declared types.
func Check(nodes []Node) error {
	for i, n := range nodes {
		if isNilNode(n) {
			return &CompositionError{Index: i, Reason: fmt.Sprintf("%v is not a node", n)}
		}
	}
	for i := 0; i < len(nodes)-1; i++ {
		from, to := nodes[i], nodes[i+1]
		out, in := outputType(from), inputType(to)
		if !Compatible(out, in) {
			return &CompositionError{
				Index:  i + 1,
				From:   NodeID(from),
				To:     NodeID(to),
				Output: out,
				Input:  in,
			}
		}
	}
	return nil
}

// checkUnique reports the first id used by more than one node.
func checkUnique(nodes []Node) error {
	seen := make(map[string]int, len(nodes))
	for i, n := range nodes {
		id := NodeID(n)
		if first, ok := seen[id]; ok {
			return &CompositionError{
				Index:  i,
				Reason: fmt.Sprintf("duplicate node id %q (first used at index %d)", id, first),
			}
		}
		seen[id] = i
	}
	return nil
}
