package release

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

var releaseDate = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

// countingProvider describes every root with validDescription and counts calls.
type countingProvider struct {
	calls map[string]int
	fail  map[string]error
}

func (p *countingProvider) Describe(_ context.Context, root module.Module, _ []module.Module) (Description, error) {
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[root.Identity.Name]++
	if err := p.fail[root.Identity.Name]; err != nil {
		return Description{}, err
	}
	d := validDescription()
	d.Name = root.Identity.Name
	return d, nil
}

func newCoordinator(r *registry.Registry, p Provider) *Coordinator {
	return &Coordinator{
		Registry:    r,
		ReleaseLine: "0.9.3",
		DownloadDir: "0.9",
		Provider:    p,
		Paths:       DefaultPathResolver(),
		Now:         func() time.Time { return releaseDate },
	}
}

func publishedRegistry(t *testing.T, id, line, version string) *registry.Registry {
	t.Helper()
	r := registry.New()
	_, err := r.Upsert(id, func(p *registry.Plugin, _ bool) error {
		p.Name = id
		p.License = registry.String("MIT")
		p.SetVersion(line, registry.Version{LastUpdate: "May 4, 2024", URL: "0.9/" + id + "-" + version + ".nbm", PluginVersion: version})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func single(m module.Module) suite.Entry {
	return suite.Entry{Root: m, Members: []module.Module{m}}
}

func TestMergeOneSkipsPublishedVersion(t *testing.T) {
	r := publishedRegistry(t, "foo", "0.9.3", "2.0.0")
	before, _ := r.Marshal()
	p := &countingProvider{}

	out, err := newCoordinator(r, p).MergeOne(context.Background(), single(mod("foo", "2.0.0")))
	if err != nil {
		t.Fatalf("MergeOne() error: %v", err)
	}
	if !out.Skipped {
		t.Error("Skipped = false, want true")
	}
	if p.calls["foo"] != 0 {
		t.Errorf("provider called %d times for a skipped suite", p.calls["foo"])
	}
	if out.Filename != "foo-2.0.0.nbm" {
		t.Errorf("Filename = %q", out.Filename)
	}
	after, _ := r.Marshal()
	if string(before) != string(after) {
		t.Error("skipped merge modified the registry")
	}
}

func TestMergeOneUpdatesNewVersion(t *testing.T) {
	r := publishedRegistry(t, "foo", "0.9.3", "2.0.0")
	p := &countingProvider{}

	out, err := newCoordinator(r, p).MergeOne(context.Background(), single(mod("foo", "2.0.1")))
	if err != nil {
		t.Fatalf("MergeOne() error: %v", err)
	}
	if out.Skipped {
		t.Fatal("Skipped = true, want false")
	}
	if p.calls["foo"] != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls["foo"])
	}

	v, ok := out.Plugin.Version("0.9.3")
	want := registry.Version{LastUpdate: "June 1, 2024", URL: "0.9/foo-2.0.1.nbm", PluginVersion: "2.0.1"}
	if !ok || v != want {
		t.Errorf("Version(0.9.3) = %+v, want %+v", v, want)
	}
	if registry.Deref(out.Plugin.LastUpdate) != "June 1, 2024" {
		t.Errorf("LastUpdate = %v", registry.Deref(out.Plugin.LastUpdate))
	}
	if out.Plugin.License != nil {
		t.Error("License should be replaced by the fresh description")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestMergeOnePreservesOtherReleaseLines(t *testing.T) {
	r := publishedRegistry(t, "foo", "1.0", "1.0.0")
	c := newCoordinator(r, &countingProvider{})
	c.ReleaseLine = "1.1"
	c.DownloadDir = "1.1"

	out, err := c.MergeOne(context.Background(), single(mod("foo", "1.0.0")))
	if err != nil {
		t.Fatalf("MergeOne() error: %v", err)
	}
	if out.Skipped {
		t.Error("same plugin version on a new release line should not be skipped")
	}
	if _, ok := out.Plugin.Version("1.0"); !ok {
		t.Error("release line 1.0 was lost")
	}
	if v, ok := out.Plugin.Version("1.1"); !ok || v.URL != "1.1/foo-1.0.0.nbm" {
		t.Errorf("Version(1.1) = %+v, %v", v, ok)
	}
}

func TestMergeOneNewPlugin(t *testing.T) {
	r := registry.New()
	e := suite.Entry{Root: mod("app", "1.0.0"), Members: []module.Module{mod("app", "1.0.0"), mod("lib", "1.0.0")}}

	out, err := newCoordinator(r, &countingProvider{}).MergeOne(context.Background(), e)
	if err != nil {
		t.Fatalf("MergeOne() error: %v", err)
	}
	if out.Filename != "app-1.0.0.zip" {
		t.Errorf("Filename = %q, want app-1.0.0.zip", out.Filename)
	}
	p, ok := r.Find("app")
	if !ok {
		t.Fatal("plugin app not added")
	}
	if v, _ := p.Version("0.9.3"); v.URL != "0.9/app-1.0.0.zip" {
		t.Errorf("URL = %q", v.URL)
	}
	if _, ok := r.Find("lib"); ok {
		t.Error("absorbed member must not get its own record")
	}
}

func TestMergeOneErrors(t *testing.T) {
	boom := stderrors.New("boom")

	tests := []struct {
		name     string
		provider Provider
		wantCode errors.Code
	}{
		{
			name:     "provider failure",
			provider: &countingProvider{fail: map[string]error{"foo": boom}},
		},
		{
			name: "missing mandatory field",
			provider: ProviderFunc(func(context.Context, module.Module, []module.Module) (Description, error) {
				d := validDescription()
				d.LongDescription = ""
				return d, nil
			}),
			wantCode: errors.ErrCodeMissingMetadata,
		},
		{
			name:     "no provider",
			wantCode: errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := publishedRegistry(t, "foo", "0.9.3", "1.0.0")
			before, _ := r.Marshal()

			_, err := newCoordinator(r, tt.provider).MergeOne(context.Background(), single(mod("foo", "1.1.0")))
			if err == nil {
				t.Fatal("MergeOne() expected error")
			}
			if tt.wantCode != "" && !errors.Is(err, tt.wantCode) {
				t.Errorf("MergeOne() = %v, want code %v", err, tt.wantCode)
			}
			after, _ := r.Marshal()
			if string(before) != string(after) {
				t.Error("failed merge modified the registry")
			}
		})
	}
}

func TestMergeOneCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCoordinator(registry.New(), &countingProvider{}).MergeOne(ctx, single(mod("foo", "1.0.0")))
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("MergeOne() = %v, want context.Canceled", err)
	}
}

func TestMergeAll(t *testing.T) {
	r := publishedRegistry(t, "viewer", "0.9.3", "1.0.0")
	app, core, viewer := mod("app", "2.0.0"), mod("core", "2.0.0"), mod("viewer", "1.0.0")
	forest := suite.Result{Entries: []suite.Entry{
		{Root: app, Members: []module.Module{app, core}},
		single(viewer),
	}}
	p := &countingProvider{}

	plan, err := newCoordinator(r, p).MergeAll(context.Background(), forest)
	if err != nil {
		t.Fatalf("MergeAll() error: %v", err)
	}

	if len(plan.Outcomes) != 2 {
		t.Fatalf("Outcomes = %d, want 2", len(plan.Outcomes))
	}
	if len(plan.Updated()) != 1 || plan.Updated()[0].ID() != "app" {
		t.Errorf("Updated() = %v", plan.Updated())
	}
	if len(plan.SkippedRoots()) != 1 || plan.SkippedRoots()[0].ID() != "viewer" {
		t.Errorf("SkippedRoots() = %v", plan.SkippedRoots())
	}
	if !plan.Changed() {
		t.Error("Changed() = false")
	}
	if _, ok := plan.Registry.Find("app"); !ok {
		t.Error("merged registry is missing app")
	}
	if _, ok := r.Find("app"); ok {
		t.Error("MergeAll must not modify the input registry")
	}
}

func TestMergeAllIsAllOrNothing(t *testing.T) {
	r := publishedRegistry(t, "viewer", "0.9.3", "1.0.0")
	before, _ := r.Marshal()
	forest := suite.Result{Entries: []suite.Entry{
		single(mod("app", "2.0.0")),
		single(mod("viewer", "1.1.0")),
	}}
	p := &countingProvider{fail: map[string]error{"viewer": stderrors.New("no manifest")}}

	plan, err := newCoordinator(r, p).MergeAll(context.Background(), forest)
	if err == nil {
		t.Fatal("MergeAll() expected error")
	}
	if plan != nil {
		t.Error("MergeAll() returned a plan on failure")
	}
	if p.calls["app"] != 1 {
		t.Errorf("app described %d times, want 1", p.calls["app"])
	}
	after, _ := r.Marshal()
	if string(before) != string(after) {
		t.Error("failed batch modified the registry")
	}
}

func TestPlanSkipFanOut(t *testing.T) {
	app, core, viewer, shared := mod("app", "2.0.0"), mod("core", "2.0.0"), mod("viewer", "1.0.0"), mod("shared", "1.0.0")
	plan := &Plan{Outcomes: []Outcome{
		{Entry: suite.Entry{Root: app, Members: []module.Module{app, core, shared}}, Skipped: true},
		{Entry: suite.Entry{Root: viewer, Members: []module.Module{viewer, shared}}, Skipped: false},
	}}

	tests := []struct {
		id   module.Identity
		want bool
	}{
		{app.Identity, true},
		{core.Identity, true},
		{viewer.Identity, false},
		{shared.Identity, false},
		{mod("unknown", "1").Identity, false},
	}
	for _, tt := range tests {
		if got := plan.Skipped(tt.id); got != tt.want {
			t.Errorf("Skipped(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
