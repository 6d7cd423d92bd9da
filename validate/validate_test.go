// ABOUTME: Tests for form rules and the withdrawal guard
// ABOUTME: Checks friendly messages and payload derivation
package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rankup/models"
)

func TestLoginForm(t *testing.T) {
	err := Struct(LoginForm{Email: "nope", Password: ""})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "Please enter a valid email address", errs.First())
	assert.Equal(t, "Password is required", errs[1].Message)

	assert.NoError(t, Struct(LoginForm{Email: "demo@rankup.dev", Password: "x"}))
}

func TestRegisterForm(t *testing.T) {
	form := RegisterForm{
		Name: "New", UserName: "newbie", Email: "new@example.com", Phone: "1",
		Password: "short", ConfirmPassword: "other",
	}
	err := Struct(form)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Password must be at least 8 characters", errs[0].Message)
	assert.Equal(t, "Passwords do not match", errs[1].Message)

	form.Password, form.ConfirmPassword = "password1", "password1"
	require.NoError(t, Struct(form))
	assert.Equal(t, "newbie", form.Registration().UserName)
}

func TestPasswordForm(t *testing.T) {
	err := Struct(PasswordForm{CurrentPassword: "a", NewPassword: "password1", ConfirmPassword: "password2"})
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "ConfirmPassword", errs[0].Field)
	assert.Equal(t, "Passwords do not match", errs.First())
}

func TestSaleFormDefaultsAndInput(t *testing.T) {
	form := NewSaleForm()
	form.Description = "Gold plan"
	form.Amount = 12345
	form.CommissionRate = 0.07
	require.NoError(t, Struct(form))

	in := form.Input()
	assert.Equal(t, float64(864), in.Commission)
	assert.Equal(t, models.WithProduct, in.ProductStatus)
	assert.Equal(t, 0.05, in.InvestorProfit)
	assert.Equal(t, PaymentCash, in.PaymentMethod)

	form.InvestorType = InvestorNoProduct
	assert.Equal(t, models.WithoutProduct, form.Input().ProductStatus)
}

func TestSaleFormRejects(t *testing.T) {
	form := NewSaleForm()
	form.Amount = 0
	form.CommissionRate = 0.1
	form.PaymentMethod = "Crypto"

	err := Struct(form)
	var errs Errors
	require.ErrorAs(t, err, &errs)

	byField := map[string]string{}
	for _, fe := range errs {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "Description is required", byField["Description"])
	assert.Equal(t, "Amount must be at least 1", byField["Amount"])
	assert.Equal(t, "Commission rate must be 5%, 6%, or 7%", byField["CommissionRate"])
	assert.Equal(t, "Please choose a valid payment method", byField["PaymentMethod"])
}

func TestWithdrawal(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		balance float64
		want    string
	}{
		{"zero", 0, 100, MsgInvalidAmount},
		{"below minimum", 49.99, 100, MsgMinWithdrawal},
		{"over balance", 500, 100, MsgInsufficient},
		{"exact balance", 100, 100, ""},
		{"minimum", 50, 12450, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Withdrawal(tt.amount, tt.balance)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}
