package source

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures no goroutines leak across this package's tests. The
// FileManager and SourceManager rely on singleflight and sync.Once, both of
// which spawn no persistent goroutines when used correctly — a leak here
// would mean a caller is blocked on a coalesced load that never returned.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
