// ABOUTME: Withdrawal MCP tool handlers
// ABOUTME: Implements get_balance, list_withdrawals, and the guarded request_withdrawal
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/validate"
)

type GetBalanceInput struct{}

type BalanceOutput struct {
	Balance float64 `json:"balance"`
	Display string  `json:"display"`
	Minimum float64 `json:"minimum_withdrawal"`
}

func (h *Handlers) GetBalance(ctx context.Context, _ *mcp.CallToolRequest, _ GetBalanceInput) (*mcp.CallToolResult, BalanceOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, BalanceOutput{}, err
	}
	if err := h.st.Withdrawal.FetchBalance(ctx); err != nil {
		return nil, BalanceOutput{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	balance := h.st.State().Withdrawal.Balance
	return &mcp.CallToolResult{}, BalanceOutput{Balance: balance, Display: format.Currency(balance), Minimum: validate.MinWithdrawal}, nil
}

type ListWithdrawalsInput struct{}

type WithdrawalOutput struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	Method string  `json:"method,omitempty"`
	TxID   string  `json:"tx_id,omitempty"`
	Date   string  `json:"date"`
}

type ListWithdrawalsOutput struct {
	Withdrawals []WithdrawalOutput `json:"withdrawals"`
}

func (h *Handlers) ListWithdrawals(ctx context.Context, _ *mcp.CallToolRequest, _ ListWithdrawalsInput) (*mcp.CallToolResult, ListWithdrawalsOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, ListWithdrawalsOutput{}, err
	}
	if err := h.st.Withdrawal.FetchHistory(ctx); err != nil {
		return nil, ListWithdrawalsOutput{}, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	out := ListWithdrawalsOutput{Withdrawals: []WithdrawalOutput{}}
	for _, w := range h.st.State().Withdrawal.History {
		out.Withdrawals = append(out.Withdrawals, WithdrawalOutput{
			ID: w.ID, Amount: w.Amount, Status: w.Status, Method: w.Method, TxID: w.TxID, Date: format.Date(w.CreatedAt),
		})
	}
	return &mcp.CallToolResult{}, out, nil
}

type RequestWithdrawalInput struct {
	Amount  float64 `json:"amount" jsonschema:"Amount in rupees (required, at least 50)"`
	Confirm bool    `json:"confirm" jsonschema:"Must be true; confirm with the user before setting it"`
}

type RequestWithdrawalOutput struct {
	Withdrawal WithdrawalOutput `json:"withdrawal"`
	Balance    float64          `json:"balance_after"`
}

// RequestWithdrawal refreshes the balance and runs the guard before anything
// is sent.
func (h *Handlers) RequestWithdrawal(ctx context.Context, _ *mcp.CallToolRequest, input RequestWithdrawalInput) (*mcp.CallToolResult, RequestWithdrawalOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, RequestWithdrawalOutput{}, err
	}
	if !input.Confirm {
		return nil, RequestWithdrawalOutput{}, fmt.Errorf("confirm must be true to request a withdrawal")
	}
	if err := h.st.Withdrawal.FetchBalance(ctx); err != nil {
		return nil, RequestWithdrawalOutput{}, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if err := validate.Withdrawal(input.Amount, h.st.State().Withdrawal.Balance); err != nil {
		return nil, RequestWithdrawalOutput{}, err
	}

	w, err := h.st.Withdrawal.SubmitRequest(ctx, input.Amount)
	if err != nil {
		return nil, RequestWithdrawalOutput{}, fmt.Errorf("failed to request withdrawal: %w", err)
	}

	return &mcp.CallToolResult{}, RequestWithdrawalOutput{
		Withdrawal: WithdrawalOutput{ID: w.ID, Amount: w.Amount, Status: w.Status, Method: w.Method, TxID: w.TxID, Date: format.Date(w.CreatedAt)},
		Balance:    h.st.State().Withdrawal.Balance,
	}, nil
}
