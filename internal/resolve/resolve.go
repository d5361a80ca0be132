package resolve

import (
	"context"
	"fmt"
	"log"

	"github.com/evgensr/md5-dedupe/internal/digest"
	"github.com/evgensr/md5-dedupe/internal/scan"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{})  { l.logWithLevel("INFO", msg, args...) }
func (l *stdLogger) Warn(msg string, args ...interface{})  { l.logWithLevel("WARN", msg, args...) }
func (l *stdLogger) Debug(msg string, args ...interface{}) { l.logWithLevel("DEBUG", msg, args...) }

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// DuplicateSet is a group of files sharing both size and digest, split
// into the keeper (never deleted) and the duplicates in enumeration order
type DuplicateSet struct {
	Size       int64
	Digest     string
	Keeper     scan.FileRecord
	Duplicates []scan.FileRecord
}

// Resolver digests size-group members and selects keepers.
// Grouping decisions are only ever built from fully settled digest
// results, so an optional worker pool cannot change the outcome.
type Resolver struct {
	logger   Logger
	computer *digest.Computer
	pool     *digest.Pool
	policy   KeepPolicy
	throttle func()
	warnings []scan.Warning
}

// NewResolver creates a Resolver with a validated policy
func NewResolver(computer *digest.Computer, policy KeepPolicy, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		logger:   &stdLogger{Logger: logger},
		computer: computer,
		policy:   policy,
	}
}

// SetPool enables concurrent digest computation within a size group
func (r *Resolver) SetPool(pool *digest.Pool) {
	r.pool = pool
}

// SetThrottle installs a hook run between size groups (CPU limiting)
func (r *Resolver) SetThrottle(fn func()) {
	r.throttle = fn
}

// Warnings returns the structured warning events collected so far
func (r *Resolver) Warnings() []scan.Warning {
	return r.warnings
}

// Resolve walks every size group with two or more members, digests the
// members, and returns one DuplicateSet per digest shared by two or more
// files. hashed counts successful digest computations only.
//
// Cancellation is checked between size groups, never partway through a
// file's digest, so partially hashed state is never grouped.
func (r *Resolver) Resolve(ctx context.Context, groups *scan.SizeGroups) (sets []DuplicateSet, hashed int, err error) {
	for _, size := range groups.Sizes() {
		if err := ctx.Err(); err != nil {
			return sets, hashed, err
		}
		if r.throttle != nil {
			r.throttle()
		}

		members := groups.Members(size)
		if len(members) < 2 {
			// Unique size cannot collide; never hashed
			continue
		}

		results := r.sumAll(members)

		byDigest := make(map[string][]scan.FileRecord)
		var digestOrder []string
		for i, res := range results {
			if res.Err != nil {
				r.warn(scan.WarnRead, res.Path, res.Err)
				continue
			}
			hashed++
			if _, ok := byDigest[res.Digest]; !ok {
				digestOrder = append(digestOrder, res.Digest)
			}
			byDigest[res.Digest] = append(byDigest[res.Digest], members[i])
		}

		for _, d := range digestOrder {
			recs := byDigest[d]
			if len(recs) < 2 {
				continue
			}

			keeper := ChooseKeeper(recs, r.policy)
			duplicates := make([]scan.FileRecord, 0, len(recs)-1)
			for _, rec := range recs {
				if rec.Path != keeper.Path {
					duplicates = append(duplicates, rec)
				}
			}

			sets = append(sets, DuplicateSet{
				Size:       size,
				Digest:     d,
				Keeper:     keeper,
				Duplicates: duplicates,
			})

			r.logger.Debug("Duplicate set resolved",
				"digest", d,
				"size", size,
				"members", len(recs),
				"keeper", keeper.Path,
			)
		}
	}

	return sets, hashed, nil
}

// sumAll digests one size group's members, concurrently when a pool is
// installed, sequentially otherwise. Results are index-aligned with
// members either way.
func (r *Resolver) sumAll(members []scan.FileRecord) []digest.Result {
	paths := make([]string, len(members))
	for i, m := range members {
		paths[i] = m.Path
	}

	if r.pool != nil {
		return r.pool.SumAll(paths)
	}

	results := make([]digest.Result, len(paths))
	for i, path := range paths {
		d, err := r.computer.Sum(path)
		results[i] = digest.Result{Path: path, Digest: d, Err: err}
	}
	return results
}

func (r *Resolver) warn(kind scan.WarningKind, path string, err error) {
	r.warnings = append(r.warnings, scan.Warning{Kind: kind, Path: path, Err: err})
	r.logger.Warn("Resolve warning", "kind", string(kind), "path", path, "error", err)
}
