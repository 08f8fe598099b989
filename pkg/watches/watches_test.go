package watches

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/catalog-client/pkg/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write watches file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "watches.yaml", `
watches:
  - id: all-services
    kind: services
  - id: web
    kind: SERVICE_NODES
    service: web
    dc: dc2
  - id: nodes
    kind: nodes
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(reg.All()))
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled targets, got %#v", enabled)
	}
	web := enabled[1]
	if web.ID != "web" || web.Kind != KindServiceNodes || web.Datacenter != "dc2" {
		t.Fatalf("unexpected web target %#v", web)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "watches.json", `{"watches":[{"id":"n","kind":"nodes"}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	all := reg.All()
	if len(all) != 1 || all[0].ID != "n" {
		t.Fatalf("expected target n, got %#v", all)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
watches:
  - id: a
    kind: nodes
  - id: a
    kind: services
`,
		"missing service": `
watches:
  - id: a
    kind: service_nodes
`,
		"bad kind": `
watches:
  - id: a
    kind: health
`,
		"empty": `watches: []`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadRegistry(writeFile(t, "watches.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTargetRequest(t *testing.T) {
	defaults := Defaults{Datacenter: "dc1", Token: "tok"}

	req, err := Target{ID: "web", Kind: KindServiceNodes, Service: "web"}.Request(defaults, 12)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	sn, ok := req.(catalog.ListServiceNodes)
	if !ok {
		t.Fatalf("expected ListServiceNodes, got %T", req)
	}
	if sn.ServiceName != "web" || sn.Datacenter != "dc1" || sn.Index != 12 || sn.Token != "tok" {
		t.Fatalf("unexpected request %#v", sn)
	}

	req, err = Target{ID: "s", Kind: KindServices, Datacenter: "dc9"}.Request(defaults, 0)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.Common().Datacenter != "dc9" {
		t.Fatalf("target datacenter must win over defaults")
	}

	if _, err := (Target{ID: "x", Kind: "health"}).Request(defaults, 0); err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
}
