package scan

// SizeGroups maps a byte size to the files sharing it, preserving both
// enumeration order within a group and first-seen order across groups so
// that every downstream decision is deterministic.
type SizeGroups struct {
	order  []int64
	groups map[int64][]FileRecord
}

// NewSizeGroups creates an empty partition
func NewSizeGroups() *SizeGroups {
	return &SizeGroups{groups: make(map[int64][]FileRecord)}
}

// Add appends rec to the group keyed by its size
func (g *SizeGroups) Add(rec FileRecord) {
	if _, ok := g.groups[rec.Size]; !ok {
		g.order = append(g.order, rec.Size)
	}
	g.groups[rec.Size] = append(g.groups[rec.Size], rec)
}

// Sizes returns the group keys in first-seen order
func (g *SizeGroups) Sizes() []int64 {
	return g.order
}

// Members returns the files of one size group in enumeration order
func (g *SizeGroups) Members(size int64) []FileRecord {
	return g.groups[size]
}

// Len returns the number of distinct sizes
func (g *SizeGroups) Len() int {
	return len(g.groups)
}
