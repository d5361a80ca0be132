package resolve

import (
	"fmt"

	"github.com/evgensr/md5-dedupe/internal/scan"
)

// KeepPolicy selects which member of a duplicate set is retained.
// Parsed and dispatched into a comparison rule once at startup; an
// unknown value never reaches the resolver.
type KeepPolicy string

const (
	// KeepFirst retains the lexicographically smallest path
	KeepFirst KeepPolicy = "first"
	// KeepOldest retains the smallest modification timestamp
	KeepOldest KeepPolicy = "oldest"
	// KeepNewest retains the largest modification timestamp
	KeepNewest KeepPolicy = "newest"
)

// ParseKeepPolicy validates a policy name. An empty string selects the
// default, first.
func ParseKeepPolicy(s string) (KeepPolicy, error) {
	switch KeepPolicy(s) {
	case "":
		return KeepFirst, nil
	case KeepFirst, KeepOldest, KeepNewest:
		return KeepPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown keep policy %q (valid: first, oldest, newest)", s)
	}
}

func (p KeepPolicy) String() string {
	return string(p)
}

// comparer returns the "candidate beats current best" rule for p.
// All three rules are strict comparisons, so among equal candidates the
// earliest in enumeration order wins. That tie-break is a documented
// contract: oldest/newest with identical timestamps keep the file seen
// first.
func (p KeepPolicy) comparer() func(candidate, best scan.FileRecord) bool {
	switch p {
	case KeepOldest:
		return func(c, b scan.FileRecord) bool { return c.ModTime.Before(b.ModTime) }
	case KeepNewest:
		return func(c, b scan.FileRecord) bool { return c.ModTime.After(b.ModTime) }
	default:
		return func(c, b scan.FileRecord) bool { return c.Path < b.Path }
	}
}

// ChooseKeeper applies the policy to a duplicate set's members, given in
// enumeration order, and returns the single retained file
func ChooseKeeper(members []scan.FileRecord, policy KeepPolicy) scan.FileRecord {
	best := members[0]
	better := policy.comparer()
	for _, m := range members[1:] {
		if better(m, best) {
			best = m
		}
	}
	return best
}
