package assistant

import (
	"context"
	"strings"
	"testing"
)

func echoTool(name string) Tool {
	return NewFuncTool(ToolSpec{Name: name, Description: "echo"}, func(ctx context.Context, req ToolRequest) (ToolResponse, error) {
		return ToolResponse{Content: "echo"}, nil
	})
}

func TestCatalogRegisterAndLookup(t *testing.T) {
	catalog, err := NewCatalog(echoTool("Get_Current_Time"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if _, _, ok := catalog.Lookup("get_current_time"); !ok {
		t.Fatalf("lookup should be case-insensitive")
	}
	if _, _, ok := catalog.Lookup("  GET_CURRENT_TIME  "); !ok {
		t.Fatalf("lookup should trim whitespace")
	}
	if _, _, ok := catalog.Lookup("missing"); ok {
		t.Fatalf("lookup of unknown tool should fail")
	}
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	catalog, err := NewCatalog(echoTool("echo"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := catalog.Register(echoTool("ECHO")); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
}

func TestCatalogRejectsInvalidTools(t *testing.T) {
	catalog, _ := NewCatalog()
	if err := catalog.Register(nil); err == nil {
		t.Fatalf("nil tool should be rejected")
	}
	if err := catalog.Register(echoTool("   ")); err == nil {
		t.Fatalf("blank tool name should be rejected")
	}
}

func TestCatalogSpecsPreserveRegistrationOrder(t *testing.T) {
	catalog, err := NewCatalog(echoTool("zeta"), echoTool("alpha"), echoTool("mid"))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	specs := catalog.Specs()
	got := make([]string, len(specs))
	for i, s := range specs {
		got[i] = s.Name
	}
	if strings.Join(got, ",") != "zeta,alpha,mid" {
		t.Fatalf("specs out of order: %v", got)
	}

	decls := catalog.Decls()
	if len(decls) != 3 || decls[0].Name != "zeta" {
		t.Fatalf("decls out of order: %+v", decls)
	}
}
