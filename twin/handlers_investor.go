// ABOUTME: Fake investor endpoints: dashboard, team, rewards, sales, and withdrawals
// ABOUTME: Shapes mirror the backend; business rules here are fixtures only

package twin

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harperreed/rankup/models"
)

const rewardPageSize = 10

// MinWithdrawal is the smallest payout the fake backend accepts.
var MinWithdrawal = decimal.NewFromInt(50)

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := accountFrom(r).stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) team(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	team := accountFrom(r).team
	s.mu.Unlock()

	// Partitions that are empty are omitted, as the backend does.
	body := map[string]any{}
	if len(team.Direct) > 0 {
		body["direct"] = team.Direct
	}
	if len(team.Indirect) > 0 {
		body["indirect"] = team.Indirect
	}
	if len(team.All) > 0 {
		body["all"] = team.All
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) rewardSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sum := accountFrom(r).summary()
	s.mu.Unlock()
	succeed(w, sum, "")
}

func (s *Server) listRewards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	kind := q.Get("type")
	start, end := q.Get("startDate"), q.Get("endDate")

	s.mu.Lock()
	all := accountFrom(r).rewards
	var matched []models.Reward
	for _, rw := range all {
		if kind != "" && rw.Type != kind {
			continue
		}
		day := rw.CreatedAt
		if len(day) >= 10 {
			day = day[:10]
		}
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		matched = append(matched, rw)
	}
	s.mu.Unlock()

	pages := (len(matched) + rewardPageSize - 1) / rewardPageSize
	if pages == 0 {
		pages = 1
	}
	from := (page - 1) * rewardPageSize
	to := from + rewardPageSize
	if from > len(matched) {
		from = len(matched)
	}
	if to > len(matched) {
		to = len(matched)
	}

	succeed(w, models.RewardPage{
		Items:         append([]models.Reward{}, matched[from:to]...),
		Page:          page,
		Pages:         pages,
		Total:         len(all),
		FilteredTotal: sumRewards(matched, "").InexactFloat64(),
	}, "")
}

func (s *Server) claimReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RankID int `json:"rankId"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := accountFrom(r)
	for i := range acct.levels {
		l := &acct.levels[i]
		if l.ID != req.RankID {
			continue
		}
		if !l.Claimable() {
			fail(w, http.StatusBadRequest, "Reward is not available to claim")
			return
		}
		// Replace the ladder so snapshots handed out earlier stay untouched.
		levels := append([]models.Level(nil), acct.levels...)
		levels[i].ClaimStatus = models.ClaimPending
		acct.levels = levels
		writeJSON(w, http.StatusOK, map[string]string{"message": "Reward claim submitted for approval"})
		return
	}
	fail(w, http.StatusNotFound, "Level not found")
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	s.mu.Lock()
	var items []models.Sale
	totalAmount, totalProfit := decimal.Zero, decimal.Zero
	for _, sale := range accountFrom(r).sales {
		if status != "" && sale.Status != status {
			continue
		}
		items = append(items, sale)
		totalAmount = totalAmount.Add(decimal.NewFromFloat(sale.Amount))
		totalProfit = totalProfit.Add(decimal.NewFromFloat(sale.Commission))
	}
	s.mu.Unlock()

	if limit > 0 {
		if page < 1 {
			page = 1
		}
		from := min((page-1)*limit, len(items))
		to := min(from+limit, len(items))
		items = items[from:to]
	}
	if items == nil {
		items = []models.Sale{}
	}

	writeJSON(w, http.StatusOK, models.SalesPage{
		Items: items,
		Summary: models.SalesSummary{
			TotalAmount: totalAmount.InexactFloat64(),
			TotalProfit: totalProfit.InexactFloat64(),
		},
	})
}

func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var in models.SaleInput
	documentPath := ""

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			fail(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		in.Description = r.FormValue("description")
		in.PaymentMethod = r.FormValue("paymentMethod")
		in.ProductStatus = r.FormValue("productStatus")
		in.Amount, _ = strconv.ParseFloat(r.FormValue("amount"), 64)
		in.Commission, _ = strconv.ParseFloat(r.FormValue("commission"), 64)
		in.InvestorProfit, _ = strconv.ParseFloat(r.FormValue("investorProfit"), 64)
		if f, hdr, err := r.FormFile("receipt"); err == nil {
			_ = f.Close()
			documentPath = "uploads/" + hdr.Filename
		}
	} else if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if in.Description == "" || in.Amount <= 0 {
		fail(w, http.StatusBadRequest, "Description and a positive amount are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := accountFrom(r)
	sale := models.Sale{
		ID:             uuid.NewString(),
		Description:    in.Description,
		Amount:         in.Amount,
		Commission:     in.Commission,
		InvestorProfit: in.InvestorProfit,
		PaymentMethod:  in.PaymentMethod,
		ProductStatus:  in.ProductStatus,
		Status:         models.SalePending,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		DocumentPath:   documentPath,
	}
	acct.sales = append([]models.Sale{sale}, acct.sales...)
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	bal := accountFrom(r).balance
	s.mu.Unlock()
	succeed(w, map[string]float64{"balance": bal.InexactFloat64()}, "")
}

func (s *Server) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := append([]models.Withdrawal{}, accountFrom(r).withdrawals...)
	s.mu.Unlock()
	succeed(w, history, "")
}

func (s *Server) submitWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount := decimal.NewFromFloat(req.Amount)

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := accountFrom(r)
	if amount.LessThan(MinWithdrawal) {
		fail(w, http.StatusBadRequest, fmt.Sprintf("Minimum withdrawal amount is $%s", MinWithdrawal))
		return
	}
	if amount.GreaterThan(acct.balance) {
		fail(w, http.StatusBadRequest, "Insufficient balance")
		return
	}

	acct.balance = acct.balance.Sub(amount)
	wd := models.Withdrawal{
		ID:        uuid.NewString(),
		Amount:    amount.InexactFloat64(),
		Status:    models.WithdrawalPending,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	acct.withdrawals = append([]models.Withdrawal{wd}, acct.withdrawals...)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": wd, "message": "Withdrawal request submitted"})
}
