package scan

// WarningKind classifies a recoverable per-file failure
type WarningKind string

const (
	WarnStat   WarningKind = "stat"   // listing or stat failed
	WarnRead   WarningKind = "read"   // digest computation failed
	WarnDelete WarningKind = "delete" // removal failed
	WarnSkip   WarningKind = "skip"   // safety validator refused the target
)

// Warning is a structured record of a non-fatal per-file failure
type Warning struct {
	Kind WarningKind
	Path string
	Err  error
}
