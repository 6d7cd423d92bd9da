// ABOUTME: Wire types for platform entities returned by the REST backend
// ABOUTME: Defines users, dashboard stats, rewards, sales, withdrawals, and team members
package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

type User struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	UserName      string          `json:"userName"`
	Role          string          `json:"role"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	BranchID      json.RawMessage `json:"branchId,omitempty"`
	Status        string          `json:"status,omitempty"`
	TotalTeamSize int             `json:"totalTeamSize,omitempty"`
	CurrentLevel  int             `json:"currentLevel,omitempty"`
	ReferralID    string          `json:"referralId,omitempty"`
	ProfilePic    string          `json:"profilePic,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	Token         string          `json:"token,omitempty"`
}

// Level status constants.
const (
	LevelAchieved = "achieved"
	LevelLocked   = "locked"
)

// Claim status constants.
const (
	ClaimNotClaimed = "not_claimed"
	ClaimPending    = "pending"
	ClaimApproved   = "approved"
	ClaimRejected   = "rejected"
)

type Level struct {
	ID              int     `json:"id"`
	No              string  `json:"no"`
	Name            string  `json:"name"`
	Criteria        string  `json:"criteria"`
	Reward          string  `json:"reward"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress"`
	ClaimStatus     string  `json:"claimStatus"`
	IsClaimed       bool    `json:"isClaimed"`
	RemainingDirect float64 `json:"remainingDirect"`
	RemainingTotal  float64 `json:"remainingTotal"`
}

// Claimable reports whether a claim may be submitted for this level.
func (l Level) Claimable() bool {
	return l.Status == LevelAchieved && l.ClaimStatus == ClaimNotClaimed
}

type DashboardUser struct {
	Name       string `json:"name"`
	ReferralID string `json:"referralId"`
	Rank       string `json:"rank"`
	Role       string `json:"role"`
}

type KPIs struct {
	TotalBusinessVolume   float64 `json:"totalBusinessVolume"`
	TotalDirectBusiness   float64 `json:"totalDirectBusiness"`
	TotalIndirectBusiness float64 `json:"totalIndirectBusiness"`
	TotalProfitEarned     float64 `json:"totalProfitEarned"`
	StakingIncome         float64 `json:"stakingIncome"`
	ReferralIncome        float64 `json:"referralIncome"`
	LevelIncome           float64 `json:"levelIncome"`
	AvailableBalance      float64 `json:"availableBalance"`
}

type TeamStats struct {
	TotalTeamSize int `json:"totalTeamSize"`
	DirectTeam    int `json:"directTeam"`
	IndirectTeam  int `json:"indirectTeam"`
}

type InvestmentStats struct {
	TotalInvestment float64 `json:"totalInvestment"`
	TotalProfit     float64 `json:"totalProfit"`
	MonthlyProfit   float64 `json:"monthlyProfit"`
	ROIStatus       string  `json:"roiStatus"`
	CurrentPhase    int     `json:"currentPhase"`
	ProfitRate      float64 `json:"profitRate"`
}

type DashboardStats struct {
	User       DashboardUser   `json:"user"`
	KPIs       KPIs            `json:"kpis"`
	TeamStats  TeamStats       `json:"teamStats"`
	Investment InvestmentStats `json:"investment"`
	Rewards    RewardSummary   `json:"rewards"`
	Levels     []Level         `json:"levels"`
}

// Level returns the ladder entry with the given id.
func (s *DashboardStats) Level(id int) (Level, bool) {
	if s == nil {
		return Level{}, false
	}
	for _, l := range s.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}

type RewardSummary struct {
	Staking  float64 `json:"staking"`
	Level    float64 `json:"level"`
	Referral float64 `json:"referral"`
	Total    float64 `json:"total"`
}

// Reward type constants.
const (
	RewardStaking  = "staking"
	RewardLevel    = "level"
	RewardReferral = "referral"
)

type RewardSource struct {
	User struct {
		Name     string `json:"name"`
		UserName string `json:"userName"`
	} `json:"user"`
}

type Reward struct {
	ID            string        `json:"_id"`
	Amount        float64       `json:"amount"`
	Type          string        `json:"type"`
	ProductStatus string        `json:"productStatus,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	StakeID       *RewardSource `json:"stakeId,omitempty"`
}

type RewardPage struct {
	Items         []Reward `json:"items"`
	Page          int      `json:"page"`
	Pages         int      `json:"pages"`
	Total         int      `json:"total"`
	FilteredTotal float64  `json:"filteredTotal"`
}

type RewardQuery struct {
	Page      int
	StartDate string
	EndDate   string
	Type      string
}

// Values encodes the query, omitting empty fields.
func (q RewardQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	return v
}

// Sale status constants.
const (
	SalePending   = "pending"
	SaleCompleted = "completed"
	SaleRejected  = "rejected"
)

// Product status constants.
const (
	WithProduct    = "with_product"
	WithoutProduct = "without_product"
)

type Sale struct {
	ID             string          `json:"_id"`
	Description    string          `json:"description"`
	Amount         float64         `json:"amount"`
	Commission     float64         `json:"commission"`
	InvestorProfit float64         `json:"investorProfit"`
	PaymentMethod  string          `json:"paymentMethod"`
	ProductStatus  string          `json:"productStatus,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"createdAt"`
	InvestorID     json.RawMessage `json:"investorId,omitempty"`
	BranchID       json.RawMessage `json:"branchId,omitempty"`
	DocumentPath   string          `json:"documentPath,omitempty"`
}

type SalesSummary struct {
	TotalAmount float64 `json:"totalAmount"`
	TotalProfit float64 `json:"totalProfit"`
}

type SalesPage struct {
	Items   []Sale       `json:"items"`
	Summary SalesSummary `json:"summary"`
}

// Upload is a file attached to a multipart request.
type Upload struct {
	FieldName string
	FileName  string
	Content   []byte
}

type SaleInput struct {
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Commission     float64 `json:"commission"`
	InvestorProfit float64 `json:"investorProfit"`
	PaymentMethod  string  `json:"paymentMethod"`
	ProductStatus  string  `json:"productStatus,omitempty"`
	Receipt        *Upload `json:"-"`
}

// Fields flattens the input into multipart form fields.
func (in SaleInput) Fields() map[string]string {
	f := map[string]string{
		"description":    in.Description,
		"amount":         strconv.FormatFloat(in.Amount, 'f', -1, 64),
		"commission":     strconv.FormatFloat(in.Commission, 'f', -1, 64),
		"investorProfit": strconv.FormatFloat(in.InvestorProfit, 'f', -1, 64),
		"paymentMethod":  in.PaymentMethod,
	}
	if in.ProductStatus != "" {
		f["productStatus"] = in.ProductStatus
	}
	return f
}

type SalesQuery struct {
	Page   int
	Limit  int
	Status string
}

// Values encodes the query, omitting empty fields.
func (q SalesQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// Withdrawal status constants.
const (
	WithdrawalPending   = "pending"
	WithdrawalApproved  = "approved"
	WithdrawalCompleted = "completed"
	WithdrawalRejected  = "rejected"
)

type Withdrawal struct {
	ID        string  `json:"_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Method    string  `json:"method,omitempty"`
	TxID      string  `json:"txId,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// Team member classification constants.
const (
	MemberDirect   = "direct"
	MemberIndirect = "indirect"
)

type TeamMember struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
	Profit float64 `json:"profit"`
	Date   string  `json:"date"`
	Upline string  `json:"upline"`
	Type   string  `json:"type"`
}

type Team struct {
	Direct   []TeamMember `json:"direct"`
	Indirect []TeamMember `json:"indirect"`
	All      []TeamMember `json:"all"`
}

type Branch struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Branch   string `json:"branch,omitempty"`
	Upline   string `json:"upline,omitempty"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
