package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Release hooks
	r := NoopReleaseHooks{}
	r.OnClassify(ctx, 3, 2, 0)
	r.OnMerge(ctx, "foo", "1.0.0", true)
	r.OnPublish(ctx, 1, 1, time.Second, nil)

	// Snapshot hooks
	s := NoopSnapshotHooks{}
	s.OnLoad(ctx, "file", -1, time.Second, nil)
	s.OnSave(ctx, "redis", 1024, time.Second, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "plugins.example.org", "/plugins.json")
	h.OnResponse(ctx, "GET", "plugins.example.org", "/plugins.json", 200, time.Second)
	h.OnError(ctx, "GET", "plugins.example.org", "/plugins.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Release().(NoopReleaseHooks); !ok {
		t.Error("Release() should return NoopReleaseHooks by default")
	}
	if _, ok := Snapshot().(NoopSnapshotHooks); !ok {
		t.Error("Snapshot() should return NoopSnapshotHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customRelease := &testReleaseHooks{}
	SetReleaseHooks(customRelease)
	if Release() != customRelease {
		t.Error("SetReleaseHooks should set custom hooks")
	}

	customSnapshot := &testSnapshotHooks{}
	SetSnapshotHooks(customSnapshot)
	if Snapshot() != customSnapshot {
		t.Error("SetSnapshotHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Release().(NoopReleaseHooks); !ok {
		t.Error("Reset() should restore NoopReleaseHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testReleaseHooks{}
	SetReleaseHooks(custom)

	// Setting nil should be ignored
	SetReleaseHooks(nil)

	if Release() != custom {
		t.Error("SetReleaseHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Register()

	ctx := context.Background()
	Release().OnMerge(ctx, "foo", "1.0.0", true)
	Snapshot().OnSave(ctx, "file", 42, time.Millisecond, nil)
	HTTP().OnError(ctx, "GET", "example.org", "/x", errors.New("refused"))
	Release().OnPublish(ctx, 0, 0, time.Second, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"plugin=foo", "snapshot save", "refused", "release failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// Test implementations
type testReleaseHooks struct{ NoopReleaseHooks }
type testSnapshotHooks struct{ NoopSnapshotHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
