package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dayoadeyemi/haven/api"
	"github.com/dayoadeyemi/haven/api/background"
	"github.com/dayoadeyemi/haven/config"
	"github.com/dayoadeyemi/haven/core/auth"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/property"
	"github.com/dayoadeyemi/haven/core/user"
	"github.com/dayoadeyemi/haven/database"
	"github.com/dayoadeyemi/haven/paystack"
	"github.com/dayoadeyemi/haven/rate"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret  = "test-token-secret"
	testGateway = "test-gateway-secret"
)

// TestEnv runs the whole API against a disposable postgres container
// and a mocked payment gateway.
type TestEnv struct {
	DB      *sqlx.DB
	Server  *httptest.Server
	URL     string
	Tokens  *auth.Tokens
	Gateway *mockGateway
	Mail    *mockMailer
}

type mockMailer struct{ sent []string }

func (m *mockMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func NewTestEnv(t *testing.T, name string) *TestEnv {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=" + name,
		},
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })
	_ = res.Expire(300)

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + res.GetPort("5432/tcp"),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return database.StatusCheck(ctx, db)
	}); err != nil {
		t.Fatalf("connecting to postgres container: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	gw := newMockGateway()
	t.Cleanup(gw.server.Close)

	mail := &mockMailer{}
	tokens := auth.NewTokens(testSecret, 15*time.Minute, time.Hour)

	mux := api.APIMux(api.APIConfig{
		Log:            log,
		DB:             db,
		Tokens:         tokens,
		Mailer:         mail,
		Background:     background.New(log),
		Paystack:       paystack.New(gw.server.URL, testGateway, 5*time.Second),
		PaystackSecret: testGateway,
		CallbackURL:    "http://localhost/callback",
		AuthLimiter:    rate.NewLimiter(1000, 10, 1000),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &TestEnv{
		DB:      db,
		Server:  srv,
		URL:     srv.URL,
		Tokens:  tokens,
		Gateway: gw,
		Mail:    mail,
	}
}

// seedUser inserts a verified user directly and returns it with a fresh
// access token.
func (env *TestEnv) seedUser(t *testing.T, role claims.Role) (user.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r$ecret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:            validate.GenerateID(),
		Email:         fmt.Sprintf("%s@test.example", validate.GenerateID()),
		PasswordHash:  string(hash),
		FirstName:     "Test",
		LastName:      "User",
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := user.Create(context.Background(), env.DB, u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	pair, err := env.Tokens.GeneratePair(claims.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		t.Fatalf("generating token pair: %v", err)
	}

	return u, pair.AccessToken
}

// seedProperty inserts a live listing owned by the given agent.
func (env *TestEnv) seedProperty(t *testing.T, agentID string, price float64) property.Property {
	t.Helper()

	now := time.Now().UTC()
	p := property.Property{
		ID:          validate.GenerateID(),
		OwnerID:     agentID,
		AgentID:     agentID,
		Title:       "Two bed flat",
		Type:        property.ForSale,
		Description: "A fine two bedroom flat",
		State:       "Lagos",
		Country:     "Nigeria",
		Location:    "Lekki",
		Bedroom:     2,
		Bathroom:    2,
		Size:        120,
		Price:       price,
		IsPublished: true,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := property.Create(context.Background(), env.DB, p); err != nil {
		t.Fatalf("seeding property: %v", err)
	}

	return p
}

// request performs an authenticated JSON call and returns the response.
// A nil body sends an empty request.
func (env *TestEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := env.Server.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

func decodeBody(t *testing.T, w *http.Response, val any) {
	t.Helper()
	defer w.Body.Close()
	if err := json.NewDecoder(w.Body).Decode(val); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
