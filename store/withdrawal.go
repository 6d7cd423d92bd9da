// ABOUTME: Withdrawal slice with the withdrawable balance and payout history
// ABOUTME: Submits payout requests and refreshes balance and history afterwards

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
)

const (
	msgBalanceFailed  = "Failed to fetch balance"
	msgHistoryFailed  = "Failed to fetch withdrawal history"
	msgWithdrawFailed = "Failed to submit withdrawal request"
)

type WithdrawalState struct {
	Status
	Balance float64
	History []models.Withdrawal
}

type WithdrawalSlice struct {
	slice
	balance float64
	history []models.Withdrawal
	api     *api.Client
	logger  *log.Logger
}

func newWithdrawalSlice(h *hub, c *api.Client, logger *log.Logger) *WithdrawalSlice {
	return &WithdrawalSlice{
		slice:   newSlice("withdrawal", h),
		history: []models.Withdrawal{},
		api:     c,
		logger:  logger,
	}
}

func (w *WithdrawalSlice) State() WithdrawalState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WithdrawalState{Status: w.status, Balance: w.balance, History: w.history}
}

func (w *WithdrawalSlice) FetchBalance(ctx context.Context) error {
	_, err := run(ctx, &w.slice, request[float64]{
		op:       "fetchBalance",
		fallback: msgBalanceFailed,
		latest:   true,
		call: func(ctx context.Context) (float64, error) {
			var env api.Envelope[struct {
				Balance float64 `json:"balance"`
			}]
			err := w.api.Get(ctx, "/withdrawals/balance", nil, &env)
			return env.Data.Balance, err
		},
		onFulfilled: func(b float64) { w.balance = b },
	})
	return err
}

func (w *WithdrawalSlice) FetchHistory(ctx context.Context) error {
	_, err := run(ctx, &w.slice, request[[]models.Withdrawal]{
		op:       "fetchHistory",
		fallback: msgHistoryFailed,
		latest:   true,
		call: func(ctx context.Context) ([]models.Withdrawal, error) {
			var env api.Envelope[[]models.Withdrawal]
			err := w.api.Get(ctx, "/withdrawals", nil, &env)
			return env.Data, err
		},
		onFulfilled: func(h []models.Withdrawal) {
			if h == nil {
				h = []models.Withdrawal{}
			}
			w.history = h
		},
	})
	return err
}

// SubmitRequest asks for a payout of amount. The amount is not checked
// locally. On success balance and history are refetched before returning;
// refetch failures land on the slice without failing the request.
func (w *WithdrawalSlice) SubmitRequest(ctx context.Context, amount float64) (*models.Withdrawal, error) {
	created, err := run(ctx, &w.slice, request[*models.Withdrawal]{
		op:       "submitRequest",
		fallback: msgWithdrawFailed,
		call: func(ctx context.Context) (*models.Withdrawal, error) {
			var raw json.RawMessage
			if err := w.api.Post(ctx, "/withdrawals", map[string]float64{"amount": amount}, &raw); err != nil {
				return nil, err
			}
			return decodeWithdrawal(raw)
		},
	})
	if err != nil {
		return nil, err
	}

	for _, refresh := range []func(context.Context) error{w.FetchBalance, w.FetchHistory} {
		if err := refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			w.logger.Debug("refresh after withdrawal failed", "err", err)
		}
	}
	return created, nil
}

// ClearError drops the error message.
func (w *WithdrawalSlice) ClearError() {
	w.clearError("clearError")
}

// decodeWithdrawal accepts the record either bare or under a data envelope.
func decodeWithdrawal(raw json.RawMessage) (*models.Withdrawal, error) {
	var out models.Withdrawal
	if len(raw) == 0 {
		return &out, nil
	}
	body := raw
	if data := gjson.GetBytes(raw, "data"); data.IsObject() {
		body = json.RawMessage(data.Raw)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &api.Error{Err: fmt.Errorf("failed to decode withdrawal: %w", err)}
	}
	return &out, nil
}
