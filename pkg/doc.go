// Package pkg provides the libraries behind pluginrelease.
//
// # Overview
//
// pluginrelease turns a set of plugin modules into distributable suites,
// merges their metadata into the published plugin registry and builds the
// update-site files. The pkg directory is organized into four areas:
//
//  1. Domain: [module], [suite], [release], [registry]
//  2. Inputs: [pom], [manifest], [descriptor], [metadata], [screenshot]
//  3. Outputs: [bundle], [snapshot], [render/forest]
//  4. Orchestration: [pipeline], with [config], [errors], [httputil] and
//     [observability] as shared infrastructure
//
// # Architecture
//
//	pom.xml files / modules.yaml
//	         ↓
//	    [suite] package (group modules into suites)
//	         ↓
//	    [release] package (merge suites into the registry)
//	         ↓
//	    [bundle] package (archives and update catalog)
//	         ↓
//	    [snapshot] package (save plugins.json)
//
// # Quick Start
//
//	projects, _ := pom.Discover("path/to/reactor")
//	mods := pom.Modules(projects, "nbm", "gephi.version")
//	runner := &pipeline.Runner{Provider: &metadata.FileProvider{}}
//	result, err := runner.Execute(ctx, mods, pipeline.Options{OutputDir: "target/site"})
package pkg
