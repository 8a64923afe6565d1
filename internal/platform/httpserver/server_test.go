package httpserver

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	marketplaceprogram "metamarket/contexts/finance-core/marketplace-program"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	"metamarket/contexts/finance-core/marketplace-program/domain/instruction"
	programhttp "metamarket/contexts/finance-core/marketplace-program/transport/http"
	"metamarket/internal/platform/config"
	"metamarket/internal/platform/metrics"

	"github.com/mr-tron/base58"
)

var (
	testProgramID      = entities.MustParsePubkey(config.DefaultProgramID)
	testTokenProgramID = entities.MustParsePubkey(config.DefaultTokenProgramID)
)

type testSigner struct {
	key     entities.Pubkey
	private ed25519.PrivateKey
}

func newTestSigner(t *testing.T) testSigner {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := entities.PubkeyFromBytes(public)
	if err != nil {
		t.Fatalf("pubkey from bytes: %v", err)
	}
	return testSigner{key: key, private: private}
}

func newTestServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	program := marketplaceprogram.NewInMemoryModule(testProgramID, testTokenProgramID, entities.DefaultRent(), opts.Metrics, nil)
	return New(program, nil, opts)
}

func doJSON(server *Server, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

// signedRequest builds a submit request; every signer in signers signs the message.
func signedRequest(ix instruction.Instruction, metas []entities.AccountMeta, signers ...testSigner) programhttp.SubmitInstructionRequest {
	data := instruction.Encode(ix)
	message := entities.SigningMessage(testProgramID, metas, data)

	req := programhttp.SubmitInstructionRequest{Data: base64.StdEncoding.EncodeToString(data)}
	for _, meta := range metas {
		req.Accounts = append(req.Accounts, programhttp.AccountMetaDTO{
			Address:    meta.Address.String(),
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}
	for _, signer := range signers {
		req.Signatures = append(req.Signatures, programhttp.SignatureDTO{
			Signer:    signer.key.String(),
			Signature: base58.Encode(ed25519.Sign(signer.private, message)),
		})
	}
	return req
}

func allocateMarketplace(t *testing.T, server *Server, address entities.Pubkey) {
	t.Helper()
	rr := doJSON(server, http.MethodPost, "/v1/accounts", programhttp.CreateAccountRequest{
		Address:  address.String(),
		Lamports: entities.DefaultRent().MinimumBalance(entities.MarketplaceSize),
		Space:    entities.MarketplaceSize,
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 allocate, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func initializeMetas(authority entities.Pubkey, marketplace entities.Pubkey) []entities.AccountMeta {
	return []entities.AccountMeta{
		{Address: authority, IsSigner: true},
		{Address: marketplace, IsWritable: true},
		{Address: entities.RentSysvarID},
	}
}

func TestInitializeMarketplaceOverHTTP(t *testing.T) {
	server := newTestServer(Options{})
	authority := newTestSigner(t)
	marketplace := newTestSigner(t).key
	allocateMarketplace(t, server, marketplace)

	req := signedRequest(instruction.InitializeMarketplace{FeePercentage: 10}, initializeMetas(authority.key, marketplace), authority)
	rr := doJSON(server, http.MethodPost, "/v1/instructions", req, map[string]string{"X-Request-Id": "req-init-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 initialize, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp programhttp.SubmitInstructionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Instruction != "initialize_marketplace" || len(resp.Events) != 1 || resp.Events[0].EventType != "marketplace.initialized" {
		t.Fatalf("unexpected response %#v", resp)
	}

	get := doJSON(server, http.MethodGet, "/v1/marketplaces/"+marketplace.String(), nil, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200 get marketplace, got %d body=%s", get.Code, get.Body.String())
	}
	var marketplaceResp programhttp.MarketplaceResponse
	if err := json.Unmarshal(get.Body.Bytes(), &marketplaceResp); err != nil {
		t.Fatalf("decode marketplace: %v", err)
	}
	if marketplaceResp.Data.FeePercentage != 10 || marketplaceResp.Data.Authority != authority.key.String() {
		t.Fatalf("unexpected marketplace %#v", marketplaceResp.Data)
	}

	again := doJSON(server, http.MethodPost, "/v1/instructions", req, nil)
	if again.Code != http.StatusConflict {
		t.Fatalf("expected 409 on re-initialize, got %d body=%s", again.Code, again.Body.String())
	}
}

func TestSubmitRequiresValidSignature(t *testing.T) {
	server := newTestServer(Options{})
	authority := newTestSigner(t)
	impostor := newTestSigner(t)
	marketplace := newTestSigner(t).key
	allocateMarketplace(t, server, marketplace)
	metas := initializeMetas(authority.key, marketplace)

	unsigned := signedRequest(instruction.InitializeMarketplace{FeePercentage: 10}, metas)
	rr := doJSON(server, http.MethodPost, "/v1/instructions", unsigned, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d body=%s", rr.Code, rr.Body.String())
	}

	forged := signedRequest(instruction.InitializeMarketplace{FeePercentage: 10}, metas, impostor)
	forged.Signatures[0].Signer = authority.key.String()
	rr = doJSON(server, http.MethodPost, "/v1/instructions", forged, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with forged signature, got %d body=%s", rr.Code, rr.Body.String())
	}

	// A signature over different data does not authorize this instruction.
	other := signedRequest(instruction.InitializeMarketplace{FeePercentage: 90}, metas, authority)
	replayed := signedRequest(instruction.InitializeMarketplace{FeePercentage: 10}, metas)
	replayed.Signatures = other.Signatures
	rr = doJSON(server, http.MethodPost, "/v1/instructions", replayed, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with signature over other data, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitLogsUnverifiedSigner(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	appMetrics := metrics.New()
	program := marketplaceprogram.NewInMemoryModule(testProgramID, testTokenProgramID, entities.DefaultRent(), appMetrics, logger)
	server := New(program, logger, Options{Metrics: appMetrics})

	authority := newTestSigner(t)
	marketplace := newTestSigner(t).key
	allocateMarketplace(t, server, marketplace)

	unsigned := signedRequest(instruction.InitializeMarketplace{FeePercentage: 10}, initializeMetas(authority.key, marketplace))
	rr := doJSON(server, http.MethodPost, "/v1/instructions", unsigned, map[string]string{"X-Request-Id": "req-unsigned"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d body=%s", rr.Code, rr.Body.String())
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["event"] != "marketplace_program_signer_unverified" {
			continue
		}
		found = true
		if entry["signer"] != authority.key.String() || entry["reason"] != "missing_signature" || entry["level"] != "DEBUG" {
			t.Fatalf("unexpected signer log %v", entry)
		}
	}
	if !found {
		t.Fatalf("expected a log naming the unverified signer, got %s", logs.String())
	}
}

func TestSubmitRejectsMalformedInput(t *testing.T) {
	server := newTestServer(Options{})

	cases := map[string]programhttp.SubmitInstructionRequest{
		"bad base64":  {Data: "***"},
		"unknown tag": {Data: base64.StdEncoding.EncodeToString([]byte{42})},
		"bad account": {Data: base64.StdEncoding.EncodeToString([]byte{2}), Accounts: []programhttp.AccountMetaDTO{{Address: "0OIl"}}},
	}
	for name, req := range cases {
		rr := doJSON(server, http.MethodPost, "/v1/instructions", req, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", name, rr.Code, rr.Body.String())
		}
	}

	raw := httptest.NewRequest(http.MethodPost, "/v1/instructions", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, raw)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on invalid json, got %d", rr.Code)
	}
}

func TestQueryErrors(t *testing.T) {
	server := newTestServer(Options{})

	missing := doJSON(server, http.MethodGet, "/v1/modules/"+newTestSigner(t).key.String(), nil, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown module, got %d body=%s", missing.Code, missing.Body.String())
	}
	invalid := doJSON(server, http.MethodGet, "/v1/mints/not-a-key", nil, nil)
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid pubkey, got %d body=%s", invalid.Code, invalid.Body.String())
	}
	balance := doJSON(server, http.MethodGet, "/v1/ledger/accounts/"+newTestSigner(t).key.String(), nil, nil)
	if balance.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token account, got %d body=%s", balance.Code, balance.Body.String())
	}
}

func TestCreateAccountConflict(t *testing.T) {
	server := newTestServer(Options{})
	address := newTestSigner(t).key
	allocateMarketplace(t, server, address)

	rr := doJSON(server, http.MethodPost, "/v1/accounts", programhttp.CreateAccountRequest{
		Address: address.String(),
		Space:   entities.MarketplaceSize,
	}, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate allocation, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitIsRateLimited(t *testing.T) {
	appMetrics := metrics.New()
	// httptest requests arrive from 192.0.2.1, standing in for the load balancer.
	limiter, err := NewRateLimiter(0.001, 1, []string{"192.0.2.1"})
	if err != nil {
		t.Fatalf("build limiter: %v", err)
	}
	server := newTestServer(Options{Metrics: appMetrics, Limiter: limiter})
	req := programhttp.SubmitInstructionRequest{Data: base64.StdEncoding.EncodeToString([]byte{42})}

	first := doJSON(server, http.MethodPost, "/v1/instructions", req, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	if first.Code != http.StatusBadRequest {
		t.Fatalf("expected first request to reach the program, got %d", first.Code)
	}
	second := doJSON(server, http.MethodPost, "/v1/instructions", req, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", second.Code, second.Body.String())
	}
	other := doJSON(server, http.MethodPost, "/v1/instructions", req, map[string]string{"X-Forwarded-For": "10.0.0.2"})
	if other.Code != http.StatusBadRequest {
		t.Fatalf("expected other client to pass, got %d", other.Code)
	}

	scrape := doJSON(server, http.MethodGet, "/metrics", nil, nil)
	if scrape.Code != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", scrape.Code)
	}
	body := scrape.Body.String()
	for _, want := range []string{
		"metamarket_http_rate_limited_total 1",
		`metamarket_program_instructions_total{instruction="unknown",outcome="rejected"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics to contain %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(Options{})
	rr := doJSON(server, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
