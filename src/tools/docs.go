package tools

import (
	"context"

	"github.com/productstack/assistant"
	"github.com/productstack/assistant/src/rag"
)

// NewSearchCompanyDocs exposes the document query engine as a tool.
func NewSearchCompanyDocs(engine *rag.QueryEngine) assistant.Tool {
	spec := assistant.ToolSpec{
		Name:        "search_company_docs",
		Description: "Searches the internal company documents for information. Use this tool for questions about company policies, products, or guidelines.",
		Parameters: []assistant.Parameter{{
			Name:        "query",
			Type:        "string",
			Description: "The question to search the documents for.",
			Required:    true,
		}},
	}
	return assistant.NewFuncTool(spec, func(ctx context.Context, req assistant.ToolRequest) (assistant.ToolResponse, error) {
		answer, err := engine.Query(ctx, stringArg(req, "query"))
		if err != nil {
			return assistant.ToolResponse{}, err
		}
		return assistant.ToolResponse{Content: answer}, nil
	})
}
