package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dayoadeyemi/haven/core/auth"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/country"
	"github.com/dayoadeyemi/haven/core/user"
)

func TestRegistrationFlow(t *testing.T) {
	env := NewTestEnv(t, "account_test")
	ctx := context.Background()

	_, adminTok := env.seedUser(t, claims.RoleAdmin)

	w := env.request(t, http.MethodPost, "/countries", adminTok, country.CountryNew{
		Name:           "Nigeria",
		Code:           "NG",
		CurrencyCode:   "NGN",
		CurrencySymbol: "#",
	})
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("creating country: status %s", w.Status)
	}
	var ng country.Country
	decodeBody(t, w, &ng)

	signup := map[string]string{
		"firstName":       "Ada",
		"lastName":        "Obi",
		"email":           "Ada.Obi@Example.com",
		"password":        "Sup3r$ecret",
		"confirmPassword": "Sup3r$ecret",
		"role":            "Buyer",
		"countryId":       ng.ID,
	}

	w = env.request(t, http.MethodPost, "/auth/register", "", signup)
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("registering: status %s", w.Status)
	}
	w.Body.Close()

	// The verification email went out synchronously.
	if len(env.Mail.sent) == 0 {
		t.Fatal("registration sent no email")
	}

	// The address is stored lowercased and the role normalized.
	usr, err := user.FetchByEmail(ctx, env.DB, "ada.obi@example.com")
	if err != nil {
		t.Fatalf("fetching registered user: %v", err)
	}
	if usr.Role != claims.RoleRenterBuyer {
		t.Fatalf("registered role %q, want %q", usr.Role, claims.RoleRenterBuyer)
	}

	// Registering the same address again collides.
	w = env.request(t, http.MethodPost, "/auth/register", "", signup)
	if w.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate registration: status %s, want 409", w.Status)
	}
	w.Body.Close()

	login := map[string]string{"email": "ada.obi@example.com", "password": "Sup3r$ecret"}

	// No login before the email is verified.
	w = env.request(t, http.MethodPost, "/auth/login", "", login)
	if w.StatusCode != http.StatusForbidden {
		t.Fatalf("login before verification: status %s, want 403", w.Status)
	}
	w.Body.Close()

	var code string
	if err := env.DB.Get(&code, "SELECT token FROM email_tokens WHERE user_id = $1", usr.ID); err != nil {
		t.Fatalf("reading verification code: %v", err)
	}

	w = env.request(t, http.MethodPost, "/auth/verify-email", "", map[string]string{
		"email": usr.Email,
		"token": "000000",
	})
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("verifying with wrong code: status %s, want 400", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/verify-email", "", map[string]string{
		"email": usr.Email,
		"token": code,
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("verifying email: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/login", "", login)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("login after verification: status %s", w.Status)
	}
	var pair auth.Pair
	decodeBody(t, w, &pair)

	w = env.request(t, http.MethodGet, "/users/profile", pair.AccessToken, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("showing profile: status %s", w.Status)
	}
	var profile user.User
	decodeBody(t, w, &profile)
	if profile.ID != usr.ID {
		t.Fatalf("profile is for user %s, want %s", profile.ID, usr.ID)
	}

	// Refresh tokens mint a new pair; access tokens do not.
	w = env.request(t, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("refreshing tokens: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": pair.AccessToken,
	})
	if w.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refreshing with access token: status %s, want 401", w.Status)
	}
	w.Body.Close()
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := NewTestEnv(t, "register_reject_test")

	_, adminTok := env.seedUser(t, claims.RoleAdmin)
	w := env.request(t, http.MethodPost, "/countries", adminTok, country.CountryNew{
		Name: "Ghana", Code: "GH", CurrencyCode: "GHS", CurrencySymbol: "GH₵",
	})
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("creating country: status %s", w.Status)
	}
	var gh country.Country
	decodeBody(t, w, &gh)

	base := func() map[string]string {
		return map[string]string{
			"firstName":       "Kofi",
			"lastName":        "Mensah",
			"email":           "kofi@example.com",
			"password":        "Sup3r$ecret",
			"confirmPassword": "Sup3r$ecret",
			"role":            "agent",
			"countryId":       gh.ID,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"unknown role", func(m map[string]string) { m["role"] = "manager" }},
		{"admin role", func(m map[string]string) { m["role"] = "admin" }},
		{"password mismatch", func(m map[string]string) { m["confirmPassword"] = "Other1$ecret" }},
		{"weak password", func(m map[string]string) { m["password"], m["confirmPassword"] = "password", "password" }},
	}

	for _, tt := range tests {
		body := base()
		tt.mutate(body)
		w := env.request(t, http.MethodPost, "/auth/register", "", body)
		if w.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %s, want 400", tt.name, w.Status)
		}
		w.Body.Close()
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := NewTestEnv(t, "reset_test")
	ctx := context.Background()

	usr, _ := env.seedUser(t, claims.RoleRenterBuyer)

	// The response never reveals whether the address exists.
	w := env.request(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("forgot password for unknown address: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": usr.Email,
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("forgot password: status %s", w.Status)
	}
	w.Body.Close()

	var otp string
	if err := env.DB.Get(&otp, "SELECT otp FROM reset_otps WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1", usr.ID); err != nil {
		t.Fatalf("reading reset otp: %v", err)
	}

	// The new password cannot land before the OTP is verified.
	w = env.request(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email":        usr.Email,
		"new_password": "N3w$ecret!",
	})
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("reset before otp verification: status %s, want 400", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/verify-reset-otp", "", map[string]string{
		"email": usr.Email,
		"otp":   otp,
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("verifying reset otp: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email":        usr.Email,
		"new_password": "N3w$ecret!",
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("resetting password: status %s", w.Status)
	}
	w.Body.Close()

	w = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    usr.Email,
		"password": "N3w$ecret!",
	})
	if w.StatusCode != http.StatusOK {
		t.Fatalf("login with new password: status %s", w.Status)
	}
	w.Body.Close()

	// The OTP is gone after use.
	var n int
	if err := env.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM reset_otps WHERE user_id = $1", usr.ID); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("%d reset otps left after use, want 0", n)
	}
}
