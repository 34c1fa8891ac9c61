package release_test

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

func ExamplePathResolver() {
	paths := release.DefaultPathResolver()
	core := module.Module{Identity: module.Identity{Namespace: "org.example", Name: "core", Version: "1.2.3"}}
	app := module.Module{Identity: module.Identity{Namespace: "org.example", Name: "app", Version: "1.2.3"}}

	fmt.Println(paths.Resolve(core, []module.Module{core}))
	fmt.Println(paths.Resolve(app, []module.Module{app, core}))
	// Output:
	// core-1.2.3.nbm
	// app-1.2.3.zip
}

func ExampleCoordinator_MergeAll() {
	published := registry.New()
	published.Upsert("graph-tools", func(p *registry.Plugin, _ bool) error {
		p.SetVersion("0.9.3", registry.Version{URL: "0.9/graph-tools-1.0.0.nbm", PluginVersion: "1.0.0"})
		return nil
	})

	forest := suite.Classify([]module.Module{
		{Identity: module.Identity{Namespace: "org.example", Name: "graph-tools", Version: "1.0.0"}},
		{Identity: module.Identity{Namespace: "org.example", Name: "layout-extra", Version: "2.0.0"}},
	})

	coord := &release.Coordinator{
		Registry:    published,
		ReleaseLine: "0.9.3",
		DownloadDir: "0.9",
		Paths:       release.DefaultPathResolver(),
		Now:         func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
		Provider: release.ProviderFunc(func(_ context.Context, root module.Module, _ []module.Module) (release.Description, error) {
			return release.Description{
				Name:             root.Identity.Name,
				ShortDescription: "Extra layouts",
				LongDescription:  "Force-directed layouts for large graphs.",
				Category:         "Layout",
			}, nil
		}),
	}

	plan, err := coord.MergeAll(context.Background(), forest)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, o := range plan.Outcomes {
		fmt.Println(o.Filename, o.Skipped)
	}
	v, _ := plan.Registry.Plugins[1].Version("0.9.3")
	fmt.Println(v.URL, v.LastUpdate)
	fmt.Println(published.Len(), plan.Registry.Len())
	// Output:
	// graph-tools-1.0.0.nbm true
	// layout-extra-2.0.0.nbm false
	// 0.9/layout-extra-2.0.0.nbm March 1, 2026
	// 1 2
}
