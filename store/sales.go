// ABOUTME: Sales slice with the investor's recorded sales and totals
// ABOUTME: Creates sales (optionally with a receipt upload) and lists them

package store

import (
	"context"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
)

const (
	msgCreateSaleFailed = "Failed to create sale."
	msgGetSalesFailed   = "Failed to fetch sales."
)

// SalesState is a snapshot of the sales slice. Success is set by the last
// successful CreateSale and cleared by the next one or by Reset.
type SalesState struct {
	Status
	Sales   []models.Sale
	Summary models.SalesSummary
	Success bool
}

type SalesSlice struct {
	slice
	sales   []models.Sale
	summary models.SalesSummary
	success bool
	api     *api.Client
}

func newSalesSlice(h *hub, c *api.Client) *SalesSlice {
	return &SalesSlice{slice: newSlice("sales", h), sales: []models.Sale{}, api: c}
}

func (s *SalesSlice) State() SalesState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SalesState{Status: s.status, Sales: s.sales, Summary: s.summary, Success: s.success}
}

// CreateSale records a sale. The new sale is prepended to the local list
// until the next GetSales replaces it with the server's view.
func (s *SalesSlice) CreateSale(ctx context.Context, in models.SaleInput) (*models.Sale, error) {
	return run(ctx, &s.slice, request[*models.Sale]{
		op:        "create",
		fallback:  msgCreateSaleFailed,
		onPending: func() { s.success = false },
		call: func(ctx context.Context) (*models.Sale, error) {
			var sale models.Sale
			var err error
			if in.Receipt != nil {
				err = s.api.PostMultipart(ctx, "/sales", in.Fields(), in.Receipt, &sale)
			} else {
				err = s.api.Post(ctx, "/sales", in, &sale)
			}
			if err != nil {
				return nil, err
			}
			return &sale, nil
		},
		onFulfilled: func(sale *models.Sale) {
			s.success = true
			next := make([]models.Sale, 0, len(s.sales)+1)
			next = append(next, *sale)
			s.sales = append(next, s.sales...)
		},
	})
}

// GetSales replaces the list and summary with the server's page for q.
func (s *SalesSlice) GetSales(ctx context.Context, q models.SalesQuery) error {
	_, err := run(ctx, &s.slice, request[models.SalesPage]{
		op:       "getAll",
		fallback: msgGetSalesFailed,
		latest:   true,
		call: func(ctx context.Context) (models.SalesPage, error) {
			var page models.SalesPage
			err := s.api.Get(ctx, "/sales", q.Values(), &page)
			return page, err
		},
		onFulfilled: func(p models.SalesPage) {
			s.sales = p.Items
			if s.sales == nil {
				s.sales = []models.Sale{}
			}
			s.summary = p.Summary
		},
	})
	return err
}

// Reset clears the error, loading, and success flags.
// Loading reads false afterwards even if a request is still in flight; it is
// recomputed when that request settles.
func (s *SalesSlice) Reset() {
	s.reset("reset", func() { s.success = false })
}
