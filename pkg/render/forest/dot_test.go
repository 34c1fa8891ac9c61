package forest

import (
	"strings"
	"testing"

	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

func mod(name string, deps ...string) module.Module {
	m := module.Module{Identity: module.Identity{Namespace: "org.example", Name: name, Version: "1.0"}}
	for _, d := range deps {
		m.Dependencies = append(m.Dependencies, module.Identity{Namespace: "org.example", Name: d, Version: "1.0"})
	}
	return m
}

func TestToDOT(t *testing.T) {
	r := suite.Classify([]module.Module{
		mod("app", "core"),
		mod("core"),
		mod("standalone"),
	})
	dot := ToDOT(r, Options{})

	for _, want := range []string{
		"digraph G {",
		`subgraph "cluster_0"`,
		`subgraph "cluster_1"`,
		`"org.example:app:1.0" [label="app", penwidth=2`,
		`"org.example:core:1.0" [label="core"]`,
		`"org.example:app:1.0" -> "org.example:core:1.0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "subgraph \"cluster_2\"") {
		t.Errorf("unexpected third cluster:\n%s", dot)
	}
}

func TestToDOTShared(t *testing.T) {
	r := suite.Classify([]module.Module{
		mod("viz", "common", "render"),
		mod("io", "common", "parse"),
		mod("common"),
		mod("render"),
		mod("parse"),
	})
	dot := ToDOT(r, Options{Detailed: true})

	if got := strings.Count(dot, `"org.example:common:1.0" [label=`); got != 1 {
		t.Errorf("shared node declared %d times:\n%s", got, dot)
	}
	if !strings.Contains(dot, `fillcolor="#ffd6a5"`) {
		t.Errorf("shared node not highlighted:\n%s", dot)
	}
	if got := strings.Count(dot, `-> "org.example:common:1.0" [color=`); got != 2 {
		t.Errorf("shared edges = %d, want 2", got)
	}
	if !strings.Contains(dot, `label="viz\norg.example\n1.0"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("got %s\nwant %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
