package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/walletgate/walletgate/internal/config"
	"github.com/walletgate/walletgate/internal/logging"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{AppName: "walletgate-test", Env: "dev", Port: "0"}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return srv.App()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(payload) > 0 && payload[0] == '{' {
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
	}
	return resp.StatusCode, decoded
}

func createWallet(t *testing.T, app *fiber.App, name string, balance string) string {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/wallet/setup",
		fmt.Sprintf(`{"name": %q, "balance": %s}`, name, balance))
	if status != http.StatusCreated {
		t.Fatalf("create wallet: expected 201, got %d (%v)", status, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("wallet response missing id: %v", body)
	}
	return id
}

func TestWalletLifecycleOverHTTP(t *testing.T) {
	app := newTestServer(t)

	id := createWallet(t, app, "alice", "100")

	status, body := doJSON(t, app, fiber.MethodGet, "/api/wallet/"+id, "")
	if status != http.StatusOK {
		t.Fatalf("get wallet: expected 200, got %d", status)
	}
	if body["balance"] != "100" || body["status"] != "ACTIVE" {
		t.Fatalf("unexpected wallet body: %v", body)
	}

	// Deleting an active wallet is rejected with a conflict.
	status, body = doJSON(t, app, fiber.MethodDelete, "/api/wallet/"+id, "")
	if status != http.StatusConflict || body["code"] != "INVALID_STATE" {
		t.Fatalf("expected 409 INVALID_STATE, got %d %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodPatch, "/api/wallet/"+id+"/status", `{"status": "FROZEN"}`)
	if status != http.StatusOK || body["status"] != "FROZEN" {
		t.Fatalf("freeze: expected FROZEN, got %d %v", status, body)
	}

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/wallet/"+id, "")
	if status != http.StatusOK {
		t.Fatalf("delete frozen wallet: expected 200, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/wallet/"+id, "")
	if status != http.StatusNotFound || body["code"] != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %v", status, body)
	}
}

func TestTransactionFlowOverHTTP(t *testing.T) {
	app := newTestServer(t)
	id := createWallet(t, app, "bob", "0")

	status, body := doJSON(t, app, fiber.MethodPost, "/api/transact/"+id,
		`{"amount": 50, "description": "Credit transaction", "referenceId": "TX_1"}`)
	if status != http.StatusCreated || body["type"] != "credit" {
		t.Fatalf("credit: got %d %v", status, body)
	}
	status, body = doJSON(t, app, fiber.MethodPost, "/api/transact/"+id,
		`{"amount": -30, "description": "Debit transaction", "referenceId": "TX_2"}`)
	if status != http.StatusCreated || body["type"] != "debit" {
		t.Fatalf("debit: got %d %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/transact/"+id, `{"amount": 0}`)
	if status != http.StatusBadRequest || body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("zero amount: expected 400 INVALID_ARGUMENT, got %d %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/wallet/"+id, "")
	if status != http.StatusOK || body["balance"] != "20" {
		t.Fatalf("expected balance 20, got %d %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodGet,
		"/api/transactions?walletId="+id+"&skip=0&limit=10&sort=createdAt&order=DESC", "")
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total"] != float64(2) {
		t.Fatalf("expected total 2, got %v", body)
	}
	items, _ := body["transactions"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 transactions, got %v", body)
	}

	status, body = doJSON(t, app, fiber.MethodGet,
		"/api/transactions?walletId="+id+"&sort=color", "")
	if status != http.StatusBadRequest || body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("unknown sort: expected 400 INVALID_ARGUMENT, got %d %v", status, body)
	}

	first, _ := items[0].(map[string]any)
	txID, _ := first["id"].(string)

	// Row deletion is gated on FROZEN.
	status, body = doJSON(t, app, fiber.MethodDelete, "/api/transactions/"+txID, "")
	if status != http.StatusConflict || body["code"] != "INVALID_STATE" {
		t.Fatalf("expected 409 INVALID_STATE, got %d %v", status, body)
	}

	doJSON(t, app, fiber.MethodPatch, "/api/wallet/"+id+"/status", `{"status": "FROZEN"}`)
	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/transactions/"+txID, "")
	if status != http.StatusOK {
		t.Fatalf("delete after freeze: expected 200, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/transactions/wallet/"+id, "")
	if status != http.StatusOK {
		t.Fatalf("delete all: expected 200, got %d", status)
	}
	status, body = doJSON(t, app, fiber.MethodGet, "/api/wallet/"+id, "")
	if status != http.StatusOK || body["balance"] != "0" {
		t.Fatalf("expected balance 0 after purge, got %d %v", status, body)
	}
}

func TestExportCSVOverHTTP(t *testing.T) {
	app := newTestServer(t)
	id := createWallet(t, app, "carol", "25")

	req := httptest.NewRequest(fiber.MethodGet, "/api/transactions/export?walletId="+id, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	payload, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus seed row, got %q", string(payload))
	}
	if lines[0] != "date,amount,type,description" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "25,credit,Initial balance") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestListWalletsOverHTTP(t *testing.T) {
	app := newTestServer(t)
	createWallet(t, app, "a", "1")
	createWallet(t, app, "b", "2")

	req := httptest.NewRequest(fiber.MethodGet, "/api/wallet", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	var wallets []map[string]any
	if err := json.Unmarshal(payload, &wallets); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	if len(wallets) != 2 || wallets[0]["name"] != "a" || wallets[1]["name"] != "b" {
		t.Fatalf("unexpected wallet list: %v", wallets)
	}
}
