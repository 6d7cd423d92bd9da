// ABOUTME: Display arithmetic for amounts, shares, and progress
// ABOUTME: Decimal based so rounding matches what the web client shows

package format

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harperreed/rankup/models"
)

const currencyPrefix = "Rs "

var hundred = decimal.NewFromInt(100)

// Currency renders v as whole rupees with en-US digit grouping, e.g. "Rs 1,234".
func Currency(v float64) string {
	return currencyPrefix + Grouped(decimal.NewFromFloat(v).Round(0))
}

// Grouped renders a whole decimal with comma thousands separators.
func Grouped(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Percent is part/total as a rounded whole percentage. A zero total gives 0.
func Percent(part, total float64) int {
	if total <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(total)).Mul(hundred).Round(0)
	return int(p.IntPart())
}

// Split is the share of total income from each reward source, in percent.
type Split struct {
	Staking  int
	Level    int
	Referral int
}

// IncomeSplit divides the summary into shares. Referral takes whatever
// staking and level leave, so the three always add to 100 when total is positive.
func IncomeSplit(s models.RewardSummary) Split {
	if s.Total <= 0 {
		return Split{}
	}
	split := Split{
		Staking: Percent(s.Staking, s.Total),
		Level:   Percent(s.Level, s.Total),
	}
	split.Referral = max(0, 100-split.Staking-split.Level)
	return split
}

// Rate renders a fractional rate as a percentage with one decimal, e.g. 0.125 -> "12.5%".
func Rate(r float64) string {
	return decimal.NewFromFloat(r).Mul(hundred).Round(1).String() + "%"
}

// Progress clamps p to [0,100] and rounds it.
func Progress(p float64) int {
	d := decimal.NewFromFloat(p).Round(0)
	switch {
	case d.LessThan(decimal.Zero):
		return 0
	case d.GreaterThan(hundred):
		return 100
	}
	return int(d.IntPart())
}

// Bar draws a progress bar of width cells.
func Bar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := Progress(p) * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ReferralLink builds the signup link a member shares with recruits.
func ReferralLink(base, referralID string) string {
	if referralID == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?ref=" + url.QueryEscape(referralID)
	}
	q := u.Query()
	q.Set("ref", referralID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Date trims an ISO timestamp to its calendar day.
func Date(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i > 0 {
		return ts[:i]
	}
	return ts
}
