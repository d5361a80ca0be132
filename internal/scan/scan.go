package scan

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// FileRecord is a regular file discovered during enumeration.
// Size and ModTime are captured at scan time; when symlinks are not
// followed they come from Lstat, so a link's own metadata is never
// confused with its target's.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Scanner enumerates regular files under a root and partitions them by size
type Scanner struct {
	logger         Logger
	followSymlinks bool
	warnings       []Warning
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger *log.Logger, followSymlinks bool) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		logger:         &stdLogger{Logger: logger},
		followSymlinks: followSymlinks,
	}
}

// Scan walks the tree under root and returns files grouped by byte size
// plus the count of successfully statted files. Per-entry failures are
// downgraded to warnings; a file that disappears between listing and stat
// is skipped silently from the caller's point of view.
func (s *Scanner) Scan(root string) (*SizeGroups, int) {
	groups := NewSizeGroups()
	scanned := 0

	s.walk(root, func(rec FileRecord) {
		groups.Add(rec)
		scanned++
	})

	s.logger.Info("Scan complete",
		"root", root,
		"scanned", scanned,
		"size_groups", groups.Len(),
	)

	return groups, scanned
}

// Warnings returns the structured warning events collected so far
func (s *Scanner) Warnings() []Warning {
	return s.warnings
}

func (s *Scanner) warn(kind WarningKind, path string, err error) {
	s.warnings = append(s.warnings, Warning{Kind: kind, Path: path, Err: err})
	s.logger.Warn("Scan warning", "kind", string(kind), "path", path, "error", err)
}

// walk descends dir recursively, yielding regular files to visit.
// Symlinks are skipped entirely unless followSymlinks is set, in which
// case symlinked directories are traversed and symlinked files yielded.
// No cycle detection is performed when following links.
func (s *Scanner) walk(dir string, visit func(FileRecord)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.warn(WarnStat, dir, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if !s.followSymlinks {
				continue
			}
			// Resolve the link target; a dangling link is skipped
			info, err := os.Stat(path)
			if err != nil {
				s.warn(WarnStat, path, err)
				continue
			}
			if info.IsDir() {
				s.walk(path, visit)
			} else if info.Mode().IsRegular() {
				visit(FileRecord{Path: path, Size: info.Size(), ModTime: info.ModTime()})
			}

		case entry.IsDir():
			s.walk(path, visit)

		case entry.Type().IsRegular():
			// Info is the lstat result captured by ReadDir; a file that
			// vanished since listing surfaces here as an error
			info, err := entry.Info()
			if err != nil {
				s.warn(WarnStat, path, err)
				continue
			}
			visit(FileRecord{Path: path, Size: info.Size(), ModTime: info.ModTime()})

		default:
			// sockets, devices, FIFOs
		}
	}
}
