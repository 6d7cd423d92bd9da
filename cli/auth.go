// ABOUTME: Account subcommands: login, logout, register, verify, whoami, profile, password
// ABOUTME: Forms are checked with the validate package before the store is called
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/validate"
)

// LoginCommand logs in, prompting for anything not given as a flag.
func LoginCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = app.prompt("Email", ""); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = app.promptPassword("Password"); err != nil {
			return err
		}
	}

	form := validate.LoginForm{Email: *email, Password: *password}
	if err := validate.Struct(form); err != nil {
		return err
	}
	if err := app.Store.Auth.Login(ctx, form.Credentials()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user := app.Store.State().Auth.User
	app.printf("✓ Logged in as %s (%s)\n", user.Name, user.Email)
	return nil
}

// LogoutCommand drops the stored session.
func LogoutCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !app.Store.State().Auth.LoggedIn() {
		app.println("Not logged in")
		return nil
	}
	app.Store.Auth.Logout()
	app.println("✓ Logged out")
	return nil
}

// RegisterCommand creates an account.
func RegisterCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "Full name (required)")
	userName := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email (required)")
	phone := fs.String("phone", "", "Phone (required)")
	branch := fs.String("branch", "", "Branch name or ID")
	upline := fs.String("ref", "", "Referral code of the upline")
	password := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := validate.RegisterForm{
		Name:     *name,
		UserName: *userName,
		Email:    *email,
		Phone:    *phone,
		Upline:   *upline,
		Password: *password,
	}
	form.ConfirmPassword = form.Password
	if form.Password == "" {
		var err error
		if form.Password, err = app.promptPassword("Password"); err != nil {
			return err
		}
		if form.ConfirmPassword, err = app.promptPassword("Confirm password"); err != nil {
			return err
		}
	}
	if err := validate.Struct(form); err != nil {
		return err
	}

	if *branch != "" {
		id, err := resolveBranch(ctx, app, *branch)
		if err != nil {
			return err
		}
		form.Branch = id
	}

	client := app.Store.API()
	for field, value := range map[string]string{"email": form.Email, "userName": form.UserName} {
		ok, msg, err := client.ValidateField(ctx, field, value)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", field, err)
		}
		if !ok {
			return fmt.Errorf("%s", msg)
		}
	}

	loggedIn, err := app.Store.Auth.Register(ctx, form.Registration())
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if loggedIn {
		app.printf("✓ Registered and logged in as %s\n", form.UserName)
		return nil
	}
	app.println("✓ Registration submitted")
	app.println("\nCheck your email for the verification link, then run:")
	app.println("  rankup verify <token>")
	return nil
}

func resolveBranch(ctx context.Context, app *App, nameOrID string) (string, error) {
	branches, err := app.Store.API().ListBranches(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list branches: %w", err)
	}
	for _, b := range branches {
		if b.ID == nameOrID || strings.EqualFold(b.Name, nameOrID) {
			return b.ID, nil
		}
	}
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return "", fmt.Errorf("unknown branch %q (available: %s)", nameOrID, strings.Join(names, ", "))
}

// VerifyCommand confirms an account with the emailed token.
func VerifyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rankup verify <token>")
	}

	msg, err := app.Store.Auth.VerifyEmail(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	app.printf("✓ %s\n", msg)
	return nil
}

// WhoamiCommand prints the stored user record.
func WhoamiCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	auth := app.Store.State().Auth
	if !auth.LoggedIn() {
		if auth.Status.Error != "" {
			app.println(auth.Status.Error)
		}
		app.println("Not logged in")
		return nil
	}
	printUser(app, auth.User)
	return nil
}

func printUser(app *App, u *models.User) {
	app.printf("Name:      %s\n", u.Name)
	app.printf("Username:  %s\n", u.UserName)
	app.printf("Email:     %s\n", u.Email)
	app.printf("Role:      %s\n", orDash(u.Role))
	app.printf("Phone:     %s\n", orDash(u.Phone))
	app.printf("Address:   %s\n", orDash(u.Address))
	app.printf("Referral:  %s\n", orDash(u.ReferralID))
	if u.CurrentLevel > 0 {
		app.printf("Level:     %d\n", u.CurrentLevel)
	}
}

// ProfileCommand updates profile fields. With no flags it prints the profile.
func ProfileCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "Full name")
	phone := fs.String("phone", "", "Phone")
	address := fs.String("address", "", "Address")
	pic := fs.String("picture", "", "Profile picture URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	upd := models.ProfileUpdate{Name: *name, Phone: *phone, Address: *address, ProfilePic: *pic}
	if upd == (models.ProfileUpdate{}) {
		printUser(app, app.Store.State().Auth.User)
		return nil
	}

	if err := app.Store.Auth.UpdateProfile(ctx, upd); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	app.println("✓ Profile updated")
	return nil
}

// PasswordCommand changes the password. All three values are prompted.
func PasswordCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("password", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	var form validate.PasswordForm
	var err error
	if form.CurrentPassword, err = app.promptPassword("Current password"); err != nil {
		return err
	}
	if form.NewPassword, err = app.promptPassword("New password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = app.promptPassword("Confirm password"); err != nil {
		return err
	}
	if err := validate.Struct(form); err != nil {
		return err
	}

	msg, err := app.Store.Auth.UpdatePassword(ctx, form.Change())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	app.printf("✓ %s\n", msg)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
