package pathfind

// labelItem is a frontier entry: a search label and the cost at which it was
// pushed. seq is the push order and breaks cost ties so that the first label
// discovered at a given cost is expanded first.
type labelItem struct {
	label int32
	cost  uint64
	seq   uint64
}

// distanceHeap is a min-heap of labelItem ordered by (cost, seq). Entries are
// never updated in place: a better path pushes a new entry and a dominated
// one is skipped when popped.
type distanceHeap struct {
	items []labelItem
}

// Len returns the number of entries.
//
// NOTE: This is part of the heap.Interface implementation.
func (d *distanceHeap) Len() int { return len(d.items) }

// Less orders by cost, then by push sequence.
//
// NOTE: This is part of the heap.Interface implementation.
func (d *distanceHeap) Less(i, j int) bool {
	if d.items[i].cost != d.items[j].cost {
		return d.items[i].cost < d.items[j].cost
	}

	return d.items[i].seq < d.items[j].seq
}

// Swap swaps the entries at i and j.
//
// NOTE: This is part of the heap.Interface implementation.
func (d *distanceHeap) Swap(i, j int) { d.items[i], d.items[j] = d.items[j], d.items[i] }

// Push appends x, which must be a labelItem.
//
// NOTE: This is part of the heap.Interface implementation.
func (d *distanceHeap) Push(x interface{}) { d.items = append(d.items, x.(labelItem)) }

// Pop removes and returns the last entry.
//
// NOTE: This is part of the heap.Interface implementation.
func (d *distanceHeap) Pop() interface{} {
	n := len(d.items)
	x := d.items[n-1]
	d.items = d.items[:n-1]

	return x
}
