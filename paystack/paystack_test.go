package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_x" {
			t.Errorf("authorization header = %q", got)
		}

		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Amount != 35050 || req.Email != "buyer@haven.test" {
			t.Errorf("unexpected request body %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req.Reference,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test_x", time.Second)

	got, err := c.Initialize(context.Background(), InitializeRequest{
		Email:       "buyer@haven.test",
		Amount:      35050,
		Reference:   "ref-1",
		CallbackURL: "http://front/callback",
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	want := InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        "ref-1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Initialize mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid amount passed",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test_x", time.Second)

	_, err := c.Initialize(context.Background(), InitializeRequest{})
	var de *DeclinedError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeclinedError, got %v", err)
	}
	if de.Message != "Invalid amount passed" {
		t.Fatalf("declined message = %q", de.Message)
	}
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"status":    "success",
				"reference": "ref-9",
				"amount":    35050,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test_x", time.Second)

	tx, err := c.Verify(context.Background(), "ref-9")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tx.Status != StatusSuccess || tx.Amount != 35050 {
		t.Fatalf("unexpected transaction %+v", tx)
	}
}

func TestVerifyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, "sk_test_x", time.Second)

	_, err := c.Verify(context.Background(), "ref-9")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var de *DeclinedError
	if errors.As(err, &de) {
		t.Fatal("transport error must not classify as declined")
	}
}

func TestSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","status":"success"}}`)

	sig := Sign("sk_test_x", body)
	if !ValidSignature("sk_test_x", body, sig) {
		t.Fatal("valid signature rejected")
	}
	if ValidSignature("sk_test_x", body, sig+"00") {
		t.Fatal("tampered signature accepted")
	}
	if ValidSignature("other-secret", body, sig) {
		t.Fatal("signature accepted under wrong secret")
	}

	ev, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Event != EventChargeSuccess || ev.Data.Reference != "ref-1" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if _, err := ParseEvent([]byte(`{}`)); err == nil {
		t.Fatal("event without a name accepted")
	}
}
