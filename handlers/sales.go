// ABOUTME: Investment MCP tool handlers
// ABOUTME: Implements list_sales and create_sale tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/validate"
)

type SaleOutput struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Commission     float64 `json:"commission"`
	InvestorProfit float64 `json:"investor_profit"`
	PaymentMethod  string  `json:"payment_method"`
	ProductStatus  string  `json:"product_status,omitempty"`
	Status         string  `json:"status"`
	Date           string  `json:"date"`
}

func saleToOutput(s models.Sale) SaleOutput {
	return SaleOutput{
		ID:             s.ID,
		Description:    s.Description,
		Amount:         s.Amount,
		Commission:     s.Commission,
		InvestorProfit: s.InvestorProfit,
		PaymentMethod:  s.PaymentMethod,
		ProductStatus:  s.ProductStatus,
		Status:         s.Status,
		Date:           format.Date(s.CreatedAt),
	}
}

type ListSalesInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: pending, completed, rejected"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results (default 50)"`
}

type ListSalesOutput struct {
	Sales       []SaleOutput `json:"sales"`
	TotalAmount float64      `json:"total_amount"`
	TotalProfit float64      `json:"total_profit"`
}

func (h *Handlers) ListSales(ctx context.Context, _ *mcp.CallToolRequest, input ListSalesInput) (*mcp.CallToolResult, ListSalesOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, ListSalesOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	if err := h.st.Sales.GetSales(ctx, models.SalesQuery{Limit: limit, Status: input.Status}); err != nil {
		return nil, ListSalesOutput{}, fmt.Errorf("failed to list sales: %w", err)
	}

	state := h.st.State().Sales
	out := ListSalesOutput{Sales: []SaleOutput{}, TotalAmount: state.Summary.TotalAmount, TotalProfit: state.Summary.TotalProfit}
	for _, s := range state.Sales {
		out.Sales = append(out.Sales, saleToOutput(s))
	}
	return &mcp.CallToolResult{}, out, nil
}

type CreateSaleInput struct {
	Description    string  `json:"description" jsonschema:"What was sold (required)"`
	Amount         float64 `json:"amount" jsonschema:"Investment amount in rupees (required, at least 1)"`
	CommissionRate float64 `json:"commission_rate,omitempty" jsonschema:"Commission rate: 0.05, 0.06, or 0.07 (default 0.05)"`
	InvestorProfit float64 `json:"investor_profit,omitempty" jsonschema:"Investor profit share: 0.05, 0.06, or 0.07 (default 0.05)"`
	PaymentMethod  string  `json:"payment_method,omitempty" jsonschema:"Cash in hand or Bank account (default Cash in hand)"`
	WithProduct    *bool   `json:"with_product,omitempty" jsonschema:"Whether the investor takes the product (default true)"`
}

func (h *Handlers) CreateSale(ctx context.Context, _ *mcp.CallToolRequest, input CreateSaleInput) (*mcp.CallToolResult, SaleOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, SaleOutput{}, err
	}

	form := validate.NewSaleForm()
	form.Description = input.Description
	form.Amount = input.Amount
	if input.CommissionRate != 0 {
		form.CommissionRate = input.CommissionRate
	}
	if input.InvestorProfit != 0 {
		form.InvestorProfit = input.InvestorProfit
	}
	if input.PaymentMethod != "" {
		form.PaymentMethod = input.PaymentMethod
	}
	if input.WithProduct != nil && !*input.WithProduct {
		form.InvestorType = validate.InvestorNoProduct
	}
	if err := validate.Struct(form); err != nil {
		return nil, SaleOutput{}, err
	}

	sale, err := h.st.Sales.CreateSale(ctx, form.Input())
	// The success flag is a one-shot signal for interactive front ends.
	h.st.Sales.Reset()
	if err != nil {
		return nil, SaleOutput{}, fmt.Errorf("failed to create sale: %w", err)
	}
	return &mcp.CallToolResult{}, saleToOutput(*sale), nil
}
