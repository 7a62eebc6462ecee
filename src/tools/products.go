package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/productstack/assistant"
	"github.com/productstack/assistant/src/products"
)

// ProductTools returns every product-management tool bound to the client.
func ProductTools(client *products.Client) []assistant.Tool {
	return []assistant.Tool{
		NewGetProductDetails(client),
		NewGetAllProducts(client),
		NewCreateProduct(client),
		NewUpdateProductPut(client),
		NewUpdateProductPatch(client),
		NewDeleteProduct(client),
		NewFinalizeProduct(client),
		NewDeleteProductIcon(client),
		NewUpdateProductIcon(client),
	}
}

var productIDParam = assistant.Parameter{
	Name:        "id",
	Type:        "string",
	Description: "The product's ID.",
	Required:    true,
}

var productDataParam = assistant.Parameter{
	Name:        "data",
	Type:        "object",
	Description: "The product fields as a JSON object (productName, productDescription, productType, internalSkuCode, version, status).",
	Required:    true,
}

// NewGetProductDetails fetches one product and renders it as a readable
// block so the completion provider can quote fields back to the user.
func NewGetProductDetails(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "get_product_details",
		Description: "Retrieves a product's information from the company's internal API. Input should be the product's ID.",
		Parameters:  []assistant.Parameter{productIDParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		id := stringArg(req, "id")
		product, err := client.Get(ctx, id)
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: formatProduct(product)}, nil
	})
}

func formatProduct(p *products.Product) string {
	return fmt.Sprintf(
		"Product found! Details:\n"+
			"Product ID: %s\n"+
			"Product Name: %s\n"+
			"Version: %s\n"+
			"Description: %s\n"+
			"Status: %s\n"+
			"Product Type: %s\n"+
			"Internal SKU Code: %s\n"+
			"Created On: %s\n"+
			"Last Updated: %s",
		p.ProductID, p.ProductName, p.Version, p.ProductDescription,
		p.Status, p.ProductType, p.InternalSkuCode, p.CreatedOn, p.LastUpdated,
	)
}

// NewGetAllProducts lists every product as a compact summary line each.
func NewGetAllProducts(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "get_all_products",
		Description: "Retrieves the list of all products from the company's internal API.",
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		list, err := client.List(ctx)
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		if len(list) == 0 {
			return assistant.ToolResponse{Content: "There are no products in the catalog."}, nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d product(s):\n", len(list))
		for _, p := range list {
			fmt.Fprintf(&sb, "- ID %s: %s (version %s, status %s)\n", p.ProductID, p.ProductName, p.Version, p.Status)
		}
		return assistant.ToolResponse{Content: strings.TrimRight(sb.String(), "\n")}, nil
	})
}

// NewCreateProduct creates a product from a JSON object of fields.
func NewCreateProduct(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "create_product",
		Description: "Creates a new product. Gather all required product fields from the user first and pass them as the data object.",
		Parameters:  []assistant.Parameter{productDataParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		product, err := client.Create(ctx, objectArg(req, "data"))
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: "Product created successfully.\n" + formatProduct(product)}, nil
	})
}

// NewUpdateProductPut replaces the whole product resource.
func NewUpdateProductPut(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "update_product_put",
		Description: "Replaces a product entirely. Requires the product ID and the full set of product fields as the data object.",
		Parameters:  []assistant.Parameter{productIDParam, productDataParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		product, err := client.Replace(ctx, stringArg(req, "id"), objectArg(req, "data"))
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: "Product replaced successfully.\n" + formatProduct(product)}, nil
	})
}

// NewUpdateProductPatch applies a partial update.
func NewUpdateProductPatch(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "update_product_patch",
		Description: "Updates selected fields of a product. Requires the product ID and only the fields to change as the data object.",
		Parameters:  []assistant.Parameter{productIDParam, productDataParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		product, err := client.Update(ctx, stringArg(req, "id"), objectArg(req, "data"))
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: "Product updated successfully.\n" + formatProduct(product)}, nil
	})
}

// NewDeleteProduct removes a product by ID.
func NewDeleteProduct(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "delete_product",
		Description: "Deletes a product. Input should be the product's ID.",
		Parameters:  []assistant.Parameter{productIDParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		id := stringArg(req, "id")
		if err := client.Delete(ctx, id); err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: fmt.Sprintf("Product %s was deleted successfully.", id)}, nil
	})
}

// NewFinalizeProduct marks a product as finalized.
func NewFinalizeProduct(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "finalize_product",
		Description: "Finalizes a product so it can no longer be edited. Input should be the product's ID.",
		Parameters:  []assistant.Parameter{productIDParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		id := stringArg(req, "id")
		if err := client.Finalize(ctx, id); err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: fmt.Sprintf("Product %s was finalized successfully.", id)}, nil
	})
}

// NewDeleteProductIcon removes a product's icon.
func NewDeleteProductIcon(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "delete_product_icon",
		Description: "Deletes a product's icon. Input should be the product's ID.",
		Parameters:  []assistant.Parameter{productIDParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		id := stringArg(req, "id")
		if err := client.DeleteIcon(ctx, id); err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: fmt.Sprintf("The icon for product %s was deleted successfully.", id)}, nil
	})
}

// NewUpdateProductIcon patches a product's icon fields.
func NewUpdateProductIcon(client *products.Client) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "update_product_icon",
		Description: "Updates a product's icon. Requires the product ID and the icon fields as the data object.",
		Parameters:  []assistant.Parameter{productIDParam, productDataParam},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		id := stringArg(req, "id")
		if err := client.UpdateIcon(ctx, id, objectArg(req, "data")); err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: fmt.Sprintf("The icon for product %s was updated successfully.", id)}, nil
	})
}

// stringArg reads a string argument the invoker already validated and coerced.
func stringArg(req assistant.ToolRequest, name string) string {
	s, _ := req.Arguments[name].(string)
	return s
}

func objectArg(req assistant.ToolRequest, name string) map[string]any {
	m, _ := req.Arguments[name].(map[string]any)
	return m
}
