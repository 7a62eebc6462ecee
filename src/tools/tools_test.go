package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/productstack/assistant"
	"github.com/productstack/assistant/src/products"
)

func TestCurrentTime(t *testing.T) {
	tool := NewCurrentTime()
	if tool.Spec().Name != "get_current_time" {
		t.Fatalf("unexpected name: %s", tool.Spec().Name)
	}
	resp, err := tool.Invoke(context.Background(), assistant.ToolRequest{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "The current time is 10:00 AM." {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func productServer(t *testing.T) *products.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"productId":          json.Number("7"),
			"productName":        "Widget Pro",
			"productDescription": "A widget.",
			"productType":        "HARDWARE",
			"internalSkuCode":    "WID-7",
			"version":            "2.1",
			"status":             "DRAFT",
			"createdOn":          "2026-01-01",
			"lastUpdated":        "2026-02-01",
		})
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"productId": json.Number("7"), "productName": "Widget Pro", "version": "2.1", "status": "DRAFT"},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return products.NewClient(srv.URL, time.Second, zerolog.Nop())
}

func TestGetProductDetailsFormatting(t *testing.T) {
	tool := NewGetProductDetails(productServer(t))

	resp, err := tool.Invoke(context.Background(), assistant.ToolRequest{
		Arguments: map[string]any{"id": "7"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	for _, want := range []string{
		"Product found! Details:",
		"Product ID: 7",
		"Product Name: Widget Pro",
		"Version: 2.1",
		"Internal SKU Code: WID-7",
	} {
		if !strings.Contains(resp.Content, want) {
			t.Fatalf("details missing %q:\n%s", want, resp.Content)
		}
	}
}

func TestGetProductDetailsMissingProduct(t *testing.T) {
	tool := NewGetProductDetails(productServer(t))

	_, err := tool.Invoke(context.Background(), assistant.ToolRequest{
		Arguments: map[string]any{"id": "999"},
	})
	if err == nil {
		t.Fatalf("missing product should surface an error")
	}
	if !strings.Contains(err.Error(), "may not exist") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetAllProductsSummarizes(t *testing.T) {
	tool := NewGetAllProducts(productServer(t))

	resp, err := tool.Invoke(context.Background(), assistant.ToolRequest{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(resp.Content, "Found 1 product(s):") {
		t.Fatalf("missing count line:\n%s", resp.Content)
	}
	if !strings.Contains(resp.Content, "ID 7: Widget Pro") {
		t.Fatalf("missing summary line:\n%s", resp.Content)
	}
}

func TestProductToolsAllRegister(t *testing.T) {
	all := ProductTools(productServer(t))
	if len(all) != 9 {
		t.Fatalf("expected 9 product tools, got %d", len(all))
	}
	catalog, err := assistant.NewCatalog(all...)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	for _, name := range []string{
		"get_product_details", "get_all_products", "create_product",
		"update_product_put", "update_product_patch", "delete_product",
		"finalize_product", "delete_product_icon", "update_product_icon",
	} {
		if _, _, ok := catalog.Lookup(name); !ok {
			t.Fatalf("tool %s not registered", name)
		}
	}
}
