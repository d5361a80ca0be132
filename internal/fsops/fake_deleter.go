package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without performing actual deletions.
// Paths present in FailOn return the mapped error instead.
type FakeDeleter struct {
	Calls  []string
	FailOn map[string]error
}

// NewFakeDeleter creates a FakeDeleter with an initialized failure map
func NewFakeDeleter() *FakeDeleter {
	return &FakeDeleter{FailOn: make(map[string]error)}
}

func (f *FakeDeleter) Remove(path string) error {
	if err, ok := f.FailOn[path]; ok {
		return err
	}
	f.Calls = append(f.Calls, "rm:"+path)
	return nil
}
