// ABOUTME: Consumer-side form rules checked before store operations are dispatched
// ABOUTME: Struct tags via go-playground/validator with messages the web client shows

package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harperreed/rankup/models"
)

// Minimum withdrawal and the messages the guard returns.
const (
	MinWithdrawal       = 50
	MsgMinWithdrawal    = "Minimum withdrawal amount is $50"
	MsgInsufficient     = "Insufficient balance"
	MsgInvalidAmount    = "Please enter a valid amount"
	PaymentCash         = "Cash in hand"
	PaymentBank         = "Bank account"
	InvestorWithProduct = "With Product"
	InvestorNoProduct   = "Without Product"
)

// Rates offered for commission and investor profit share.
var Rates = []float64{0.05, 0.06, 0.07}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	_ = val.RegisterValidation("rate", func(fl validator.FieldLevel) bool {
		r := fl.Field().Float()
		for _, allowed := range Rates {
			if math.Abs(r-allowed) < 1e-9 {
				return true
			}
		}
		return false
	})
	return val
}

// FieldError is one failed rule with a display message.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the set of failed rules for a form, in field order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the first message, or "" when there are none.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

type LoginForm struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

type RegisterForm struct {
	Name            string `validate:"required" label:"Full name"`
	UserName        string `validate:"required,min=3" label:"Username"`
	Email           string `validate:"required,email" label:"Email"`
	Phone           string `validate:"required" label:"Phone"`
	Branch          string `label:"Branch"`
	Upline          string `label:"Referral code"`
	Password        string `validate:"required,min=8" label:"Password"`
	ConfirmPassword string `validate:"required,eqfield=Password" label:"Confirm password"`
}

func (f RegisterForm) Registration() models.Registration {
	return models.Registration{
		Name:     strings.TrimSpace(f.Name),
		UserName: strings.TrimSpace(f.UserName),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Branch:   f.Branch,
		Upline:   f.Upline,
		Password: f.Password,
	}
}

type PasswordForm struct {
	CurrentPassword string `validate:"required" label:"Current password"`
	NewPassword     string `validate:"required,min=8" label:"New password"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword" label:"Confirm password"`
}

func (f PasswordForm) Change() models.PasswordChange {
	return models.PasswordChange{CurrentPassword: f.CurrentPassword, NewPassword: f.NewPassword}
}

// SaleForm is the investment entry form.
type SaleForm struct {
	Description    string  `validate:"required" label:"Description"`
	Amount         float64 `validate:"gte=1" label:"Amount"`
	CommissionRate float64 `validate:"rate" label:"Commission"`
	InvestorProfit float64 `validate:"rate" label:"Profit share"`
	PaymentMethod  string  `validate:"oneof='Cash in hand' 'Bank account'" label:"Payment method"`
	InvestorType   string  `validate:"oneof='With Product' 'Without Product'" label:"Investor type"`
	Receipt        *models.Upload
}

// NewSaleForm returns a form holding the web client's defaults.
func NewSaleForm() SaleForm {
	return SaleForm{
		CommissionRate: 0.05,
		InvestorProfit: 0.05,
		PaymentMethod:  PaymentCash,
		InvestorType:   InvestorWithProduct,
	}
}

// Commission is the whole-rupee commission for the entered amount.
func (f SaleForm) Commission() float64 {
	return math.Round(f.Amount * f.CommissionRate)
}

// Input converts the form to the payload createSale sends.
func (f SaleForm) Input() models.SaleInput {
	status := models.WithoutProduct
	if f.InvestorType == InvestorWithProduct {
		status = models.WithProduct
	}
	return models.SaleInput{
		Description:    strings.TrimSpace(f.Description),
		Amount:         f.Amount,
		Commission:     f.Commission(),
		InvestorProfit: f.InvestorProfit,
		PaymentMethod:  f.PaymentMethod,
		ProductStatus:  status,
		Receipt:        f.Receipt,
	}
}

// Struct runs the tag rules on form and returns Errors, or nil when it passes.
func Struct(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "eqfield":
		if strings.Contains(fe.Param(), "Password") {
			return "Passwords do not match"
		}
		return label + " does not match"
	case "oneof":
		return "Please choose a valid " + strings.ToLower(label)
	case "rate":
		return label + " rate must be 5%, 6%, or 7%"
	}
	return label + " is invalid"
}

// Withdrawal checks a requested amount against the minimum and the balance.
func Withdrawal(amount, balance float64) error {
	switch {
	case math.IsNaN(amount) || amount <= 0:
		return errors.New(MsgInvalidAmount)
	case amount < MinWithdrawal:
		return errors.New(MsgMinWithdrawal)
	case amount > balance:
		return errors.New(MsgInsufficient)
	}
	return nil
}
