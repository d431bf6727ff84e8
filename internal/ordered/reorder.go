package ordered

import "slices"

// ComputeReorder returns the order after dragging movedID onto dropTargetID:
// the moved id is taken out and reinserted at the target's position, shifting the
// target and everything after it by one. If either id is missing or both are equal
// a copy of order is returned unchanged.
func ComputeReorder(order []string, movedID, dropTargetID string) []string {
	out := slices.Clone(order)

	from := slices.Index(order, movedID)
	to := slices.Index(order, dropTargetID)

	if from < 0 || to < 0 || from == to {
		return out
	}

	out = slices.Delete(out, from, from+1)

	return slices.Insert(out, to, movedID)
}
