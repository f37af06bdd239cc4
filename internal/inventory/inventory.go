package inventory

// BytesPerMB is the divisor used for leaf sizes.
const BytesPerMB = 1 << 20

// Entry is one leaf directory (e.g. "Artist/Album") and its size.
type Entry struct {
	RelPath string `json:"relpath"`
	SizeMB  int64  `json:"sizemb"`
}

// Inventory is the ordered catalog of leaves found under a source.
// Entries are sorted by top-level name, then leaf name. The review
// buffer relies on this order being stable between render and parse.
type Inventory struct {
	Source  string  `json:"source"`
	Entries []Entry `json:"subdirs"`
}

// Len returns the number of leaves.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.Entries)
}

// TotalMB sums the size of every leaf.
func (inv *Inventory) TotalMB() int64 {
	if inv == nil {
		return 0
	}
	var total int64
	for _, e := range inv.Entries {
		total += e.SizeMB
	}
	return total
}
