package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/statement-ledger-api/internal/auth"
	"github.com/sheikh-saqib/statement-ledger-api/internal/ledger"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage/memory"
	"github.com/sheikh-saqib/statement-ledger-api/internal/users"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	statements := memory.NewMemoryStatementStore()
	directory := memory.NewMemoryUserDirectory()
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	usersSvc := users.NewService(directory, auth.NewPasswordHasher(bcrypt.MinCost), tokens)
	l := ledger.NewLedger(statements, directory, nil, logger)
	return NewServer(usersSvc, l, tokens, logger).Router()
}

// performRequest sends body as JSON (when non-nil) with an optional bearer token
func performRequest(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status got=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

type sessionResponse struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

func registerAndLogin(t *testing.T, r http.Handler, name, email string) sessionResponse {
	t.Helper()
	rec := performRequest(t, r, http.MethodPost, "/api/v1/users", map[string]string{"name": name, "email": email, "password": "1234"}, "")
	expectStatus(t, rec, http.StatusCreated)

	rec = performRequest(t, r, http.MethodPost, "/api/v1/sessions", map[string]string{"email": email, "password": "1234"}, "")
	expectStatus(t, rec, http.StatusOK)
	var s sessionResponse
	decode(t, rec, &s)
	if s.Token == "" || s.User.ID == "" {
		t.Fatalf("empty session: %+v", s)
	}
	return s
}

type balanceResponse struct {
	Statement []models.Statement `json:"statement"`
	Balance   decimal.Decimal    `json:"balance"`
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	alice := registerAndLogin(t, r, "Alice", "alice@user.com")
	bob := registerAndLogin(t, r, "Bob", "bob@user.com")

	// profile
	rec := performRequest(t, r, http.MethodGet, "/api/v1/profile", nil, alice.Token)
	expectStatus(t, rec, http.StatusOK)
	var profile map[string]any
	decode(t, rec, &profile)
	if profile["name"] != "Alice" || profile["id"] != alice.User.ID {
		t.Fatalf("profile got=%v", profile)
	}
	if _, leaked := profile["password"]; leaked {
		t.Fatalf("profile leaks the password hash")
	}

	// deposit
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/deposit", map[string]any{"amount": 100, "description": "Deposit"}, alice.Token)
	expectStatus(t, rec, http.StatusCreated)
	var deposit models.Statement
	decode(t, rec, &deposit)
	if deposit.ID == "" || !deposit.Amount.Equal(decimal.NewFromInt(100)) || deposit.Type != models.OperationDeposit {
		t.Fatalf("deposit got=%+v", deposit)
	}

	// withdraw
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/withdraw", map[string]any{"amount": "30", "description": "Withdraw"}, alice.Token)
	expectStatus(t, rec, http.StatusCreated)

	// transfer
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/transfers/"+bob.User.ID, map[string]any{"amount": 20, "description": "lunch"}, alice.Token)
	expectStatus(t, rec, http.StatusCreated)

	// balances
	rec = performRequest(t, r, http.MethodGet, "/api/v1/statements/balance", nil, alice.Token)
	expectStatus(t, rec, http.StatusOK)
	var ab balanceResponse
	decode(t, rec, &ab)
	if !ab.Balance.Equal(decimal.NewFromInt(50)) || len(ab.Statement) != 3 {
		t.Fatalf("alice balance got=%s statements=%d", ab.Balance, len(ab.Statement))
	}

	rec = performRequest(t, r, http.MethodGet, "/api/v1/statements/balance", nil, bob.Token)
	var bb balanceResponse
	decode(t, rec, &bb)
	if !bb.Balance.Equal(decimal.NewFromInt(20)) || len(bb.Statement) != 1 {
		t.Fatalf("bob balance got=%s statements=%d", bb.Balance, len(bb.Statement))
	}
	if got := bb.Statement[0]; got.SenderID == nil || *got.SenderID != alice.User.ID || got.Type != models.OperationTransfer {
		t.Fatalf("bob receive row got=%+v", got)
	}

	// statement lookup
	rec = performRequest(t, r, http.MethodGet, "/api/v1/statements/"+deposit.ID, nil, alice.Token)
	expectStatus(t, rec, http.StatusOK)
	var got models.Statement
	decode(t, rec, &got)
	if got.ID != deposit.ID || got.UserID != alice.User.ID || !got.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("statement got=%+v", got)
	}

	// someone else's statement is not visible
	rec = performRequest(t, r, http.MethodGet, "/api/v1/statements/"+deposit.ID, nil, bob.Token)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestErrorStatuses(t *testing.T) {
	r := setupTestServer(t)
	alice := registerAndLogin(t, r, "Alice", "alice@user.com")

	// duplicate registration
	rec := performRequest(t, r, http.MethodPost, "/api/v1/users", map[string]string{"name": "Alice", "email": "alice@user.com", "password": "1234"}, "")
	expectStatus(t, rec, http.StatusConflict)

	// bad credentials
	rec = performRequest(t, r, http.MethodPost, "/api/v1/sessions", map[string]string{"email": "alice@user.com", "password": "nope"}, "")
	expectStatus(t, rec, http.StatusUnauthorized)

	// missing fields
	rec = performRequest(t, r, http.MethodPost, "/api/v1/users", map[string]string{"name": "x"}, "")
	expectStatus(t, rec, http.StatusBadRequest)

	// insufficient funds
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/withdraw", map[string]any{"amount": 1}, alice.Token)
	expectStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["message"] != "insufficient funds" {
		t.Fatalf("message got=%q", body["message"])
	}

	// non-positive amount
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/deposit", map[string]any{"amount": -5}, alice.Token)
	expectStatus(t, rec, http.StatusBadRequest)

	// more precision than the amount column keeps
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/deposit", map[string]any{"amount": "0.004"}, alice.Token)
	expectStatus(t, rec, http.StatusBadRequest)

	// malformed amount
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/deposit", map[string]any{"amount": "lots"}, alice.Token)
	expectStatus(t, rec, http.StatusBadRequest)

	// transfer to an unknown user
	rec = performRequest(t, r, http.MethodPost, "/api/v1/statements/transfers/ghost", map[string]any{"amount": 1}, alice.Token)
	expectStatus(t, rec, http.StatusNotFound)

	// unknown statement
	rec = performRequest(t, r, http.MethodGet, "/api/v1/statements/non-exist-statement", nil, alice.Token)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestUnauthorized(t *testing.T) {
	r := setupTestServer(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/statements/balance"} {
		rec := performRequest(t, r, http.MethodGet, path, nil, "")
		expectStatus(t, rec, http.StatusUnauthorized)

		rec = performRequest(t, r, http.MethodGet, path, nil, "not-a-jwt")
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	// a valid token for a user that no longer resolves
	other := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	token, _ := other.Issue("ghost")
	rec := performRequest(t, r, http.MethodGet, "/api/v1/profile", nil, token)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	r := setupTestServer(t)
	rec := performRequest(t, r, http.MethodGet, "/health", nil, "")
	expectStatus(t, rec, http.StatusOK)
}
