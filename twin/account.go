// ABOUTME: Fixture accounts for the fake backend
// ABOUTME: Seeds the demo investor with a level ladder, rewards, team, sales, and payouts

package twin

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harperreed/rankup/models"
)

// Demo credentials for the seeded account.
const (
	DemoEmail    = "demo@rankup.dev"
	DemoPassword = "demo-pass-123"
	DemoName     = "Demo Investor"
)

type branch struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type account struct {
	user        models.User
	password    string
	verified    bool
	levels      []models.Level
	rewards     []models.Reward
	team        models.Team
	sales       []models.Sale
	withdrawals []models.Withdrawal
	balance     decimal.Decimal
	investment  models.InvestmentStats
}

func withAccount(ctx context.Context, a *account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

func accountFrom(r *http.Request) *account {
	a, _ := r.Context().Value(accountKey).(*account)
	return a
}

func (s *Server) seed() {
	s.branches = []branch{
		{ID: "b-lahore", Name: "Lahore"},
		{ID: "b-karachi", Name: "Karachi"},
		{ID: "b-islamabad", Name: "Islamabad"},
	}

	demo := &account{
		user: models.User{
			ID:            "u-demo",
			Name:          DemoName,
			Email:         DemoEmail,
			UserName:      "demo",
			Role:          "investor",
			Phone:         "03001234567",
			BranchID:      []byte(`{"_id":"b-lahore","name":"Lahore"}`),
			Status:        "active",
			TotalTeamSize: 3,
			CurrentLevel:  3,
			ReferralID:    "RK-1001",
			CreatedAt:     "2026-01-05T10:00:00Z",
		},
		password: DemoPassword,
		verified: true,
		levels: []models.Level{
			{ID: 1, No: "01", Name: "Starter", Criteria: "2 direct members", Reward: "Rs 5,000", Status: models.LevelAchieved, Progress: 100, ClaimStatus: models.ClaimApproved, IsClaimed: true},
			{ID: 2, No: "02", Name: "Bronze", Criteria: "Rs 100,000 team volume", Reward: "Rs 10,000", Status: models.LevelAchieved, Progress: 100, ClaimStatus: models.ClaimApproved, IsClaimed: true},
			{ID: 3, No: "03", Name: "Silver", Criteria: "Rs 250,000 team volume", Reward: "Mobile phone", Status: models.LevelAchieved, Progress: 100, ClaimStatus: models.ClaimNotClaimed},
			{ID: 4, No: "04", Name: "Gold", Criteria: "Rs 500,000 team volume", Reward: "Umrah ticket", Status: models.LevelLocked, Progress: 62.4, ClaimStatus: models.ClaimNotClaimed, RemainingDirect: 1, RemainingTotal: 188000},
		},
		rewards: []models.Reward{
			{ID: "r1", Amount: 1500, Type: models.RewardStaking, ProductStatus: models.WithProduct, CreatedAt: "2026-02-01T09:00:00Z"},
			{ID: "r2", Amount: 2500, Type: models.RewardReferral, CreatedAt: "2026-02-03T09:00:00Z"},
			{ID: "r3", Amount: 10000, Type: models.RewardLevel, CreatedAt: "2026-02-10T09:00:00Z"},
			{ID: "r4", Amount: 1500, Type: models.RewardStaking, ProductStatus: models.WithProduct, CreatedAt: "2026-03-01T09:00:00Z"},
			{ID: "r5", Amount: 750, Type: models.RewardReferral, CreatedAt: "2026-03-04T09:00:00Z"},
		},
		team: models.Team{
			Direct: []models.TeamMember{
				{ID: "m1", Name: "Ayesha Khan", Email: "ayesha@example.com", Phone: "03111111111", Amount: 100000, Profit: 5000, Date: "2026-01-20", Upline: DemoName, Type: models.MemberDirect},
				{ID: "m2", Name: "Bilal Ahmed", Email: "bilal@example.com", Phone: "03222222222", Amount: 50000, Profit: 2500, Date: "2026-02-02", Upline: DemoName, Type: models.MemberDirect},
			},
			Indirect: []models.TeamMember{
				{ID: "m3", Name: "Danish Ali", Email: "danish@example.com", Phone: "03333333333", Amount: 75000, Profit: 3750, Date: "2026-02-15", Upline: "Ayesha Khan", Type: models.MemberIndirect},
			},
		},
		sales: []models.Sale{
			{ID: "s1", Description: "Starter package", Amount: 50000, Commission: 2500, InvestorProfit: 0.05, PaymentMethod: "Cash in hand", ProductStatus: models.WithProduct, Status: models.SaleCompleted, CreatedAt: "2026-01-25T12:00:00Z"},
		},
		withdrawals: []models.Withdrawal{
			{ID: "w1", Amount: 5000, Status: models.WithdrawalCompleted, Method: "Bank account", TxID: "TX-7781", CreatedAt: "2026-02-20T08:00:00Z"},
		},
		balance: decimal.NewFromInt(12450),
		investment: models.InvestmentStats{
			TotalInvestment: 50000,
			TotalProfit:     3000,
			MonthlyProfit:   1500,
			ROIStatus:       "active",
			CurrentPhase:    1,
			ProfitRate:      0.03,
		},
	}
	demo.team.All = append(append([]models.TeamMember{}, demo.team.Direct...), demo.team.Indirect...)
	s.accounts[DemoEmail] = demo
}

func newAccount(reg models.Registration, verified bool) *account {
	return &account{
		user: models.User{
			ID:         uuid.NewString(),
			Name:       reg.Name,
			Email:      reg.Email,
			UserName:   reg.UserName,
			Role:       "investor",
			Phone:      reg.Phone,
			Status:     "active",
			ReferralID: "RK-" + uuid.NewString()[:8],
		},
		password: reg.Password,
		verified: verified,
		levels: []models.Level{
			{ID: 1, No: "01", Name: "Starter", Criteria: "2 direct members", Reward: "Rs 5,000", Status: models.LevelLocked, ClaimStatus: models.ClaimNotClaimed, RemainingDirect: 2},
		},
		team:    models.Team{},
		balance: decimal.Zero,
	}
}

func sumRewards(rewards []models.Reward, kind string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rewards {
		if kind == "" || r.Type == kind {
			total = total.Add(decimal.NewFromFloat(r.Amount))
		}
	}
	return total
}

func (a *account) summary() models.RewardSummary {
	return models.RewardSummary{
		Staking:  sumRewards(a.rewards, models.RewardStaking).InexactFloat64(),
		Level:    sumRewards(a.rewards, models.RewardLevel).InexactFloat64(),
		Referral: sumRewards(a.rewards, models.RewardReferral).InexactFloat64(),
		Total:    sumRewards(a.rewards, "").InexactFloat64(),
	}
}

func (a *account) stats() models.DashboardStats {
	direct := decimal.Zero
	for _, m := range a.team.Direct {
		direct = direct.Add(decimal.NewFromFloat(m.Amount))
	}
	indirect := decimal.Zero
	for _, m := range a.team.Indirect {
		indirect = indirect.Add(decimal.NewFromFloat(m.Amount))
	}
	sum := a.summary()

	rank := ""
	for _, l := range a.levels {
		if l.Status == models.LevelAchieved {
			rank = l.Name
		}
	}

	return models.DashboardStats{
		User: models.DashboardUser{Name: a.user.Name, ReferralID: a.user.ReferralID, Rank: rank, Role: a.user.Role},
		KPIs: models.KPIs{
			TotalBusinessVolume:   direct.Add(indirect).InexactFloat64(),
			TotalDirectBusiness:   direct.InexactFloat64(),
			TotalIndirectBusiness: indirect.InexactFloat64(),
			TotalProfitEarned:     sum.Total,
			StakingIncome:         sum.Staking,
			ReferralIncome:        sum.Referral,
			LevelIncome:           sum.Level,
			AvailableBalance:      a.balance.InexactFloat64(),
		},
		TeamStats: models.TeamStats{
			TotalTeamSize: len(a.team.Direct) + len(a.team.Indirect),
			DirectTeam:    len(a.team.Direct),
			IndirectTeam:  len(a.team.Indirect),
		},
		Investment: a.investment,
		Rewards:    sum,
		Levels:     append([]models.Level(nil), a.levels...),
	}
}
