package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/ratelimit"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
	"github.com/veritag/veritag/internal/server/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repos, err := repomanager.NewBoltRepositoryManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	limiter := ratelimit.NewMemoryLimiter()

	orgs := services.NewOrganizationService(repos, logger)
	rewards := services.NewRewardService(repos, services.SimulatedPayer{}, logger)
	verifications := services.NewVerificationService(repos, limiter, rewards, logger)
	products := services.NewProductService(repos, verifications, logger)
	resellers := services.NewResellerService(repos, logger)
	admin := services.NewAdminService(repos, limiter, logger)

	h := NewHandler(orgs, products, verifications, rewards, resellers, admin,
		[]byte("test-secret"), time.Hour, logger)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func issueTestToken(t *testing.T, srv *httptest.Server, user string) string {
	t.Helper()
	var out issueTokenResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/token", "", issueTokenRequest{UserID: user}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/organizations", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/organizations", "garbage-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_EndToEndVerification(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	admin := issueTestToken(t, srv, "admin")
	buyer := issueTestToken(t, srv, "buyer")

	var org models.OrganizationPublic
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/organizations", admin,
		organizationRequest{Name: "Acme"}, &org)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createProductResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/products", admin,
		createProductRequest{OrgID: org.ID, Name: "Widget", WithSerial: true, UserSerialNo: "UNIT-1"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, created.Printed)
	serialNo := created.Printed.SerialNumber.SerialNo

	var result services.VerificationResult
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/verify", buyer,
		verifyRequest{SerialNo: serialNo, Code: created.Printed.Code}, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusFirstVerification, result.Status)

	var redeemed services.RedeemResult
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/redeem", buyer,
		redeemRequest{SerialNo: serialNo, Code: created.Printed.Code}, &redeemed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, redeemed.Success)
	assert.EqualValues(t, services.FirstVerificationPoints, redeemed.Points)

	var ledger models.UserRewards
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/rewards", buyer, nil, &ledger)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, services.FirstVerificationPoints, ledger.TotalPoints)
}

func TestAPI_RateLimitReturns429(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	admin := issueTestToken(t, srv, "admin")
	guesser := issueTestToken(t, srv, "guesser")

	var org models.OrganizationPublic
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/organizations", admin,
		organizationRequest{Name: "Acme"}, &org)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createProductResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/products", admin,
		createProductRequest{OrgID: org.ID, Name: "Widget", WithSerial: true}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	serialNo := created.Printed.SerialNumber.SerialNo

	for i := 0; i < ratelimit.MaxAttempts; i++ {
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/verify", guesser,
			verifyRequest{SerialNo: serialNo, Code: "deadbeef"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var errResp errorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/verify", guesser,
		verifyRequest{SerialNo: serialNo, Code: "deadbeef"}, &errResp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, errResp.ResetTime)
}

func TestAPI_NotFoundMapsTo404(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	buyer := issueTestToken(t, srv, "buyer")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/verify", buyer,
		verifyRequest{SerialNo: "no-such-serial", Code: "deadbeef"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ResellerChallenge(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	admin := issueTestToken(t, srv, "admin")

	var org models.OrganizationPublic
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/organizations", admin,
		organizationRequest{Name: "Acme"}, &org)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res models.Reseller
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/resellers", admin,
		registerResellerRequest{OrgID: org.ID, Name: "Shop"}, &res)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var code services.ResellerCode
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/resellers/code", admin,
		resellerCodeRequest{ResellerID: res.ID, Context: "storefront"}, &code)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verified services.ResellerVerification
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/resellers/verify", admin,
		resellerVerifyRequest{ResellerID: res.ID, Timestamp: code.Timestamp, Context: code.Context, Code: code.Code}, &verified)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ResellerStatusSuccess, verified.Status)
}

func TestAPI_AdminReset(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	admin := issueTestToken(t, srv, "admin")

	var org models.OrganizationPublic
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/organizations", admin,
		organizationRequest{Name: "Acme"}, &org)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/admin/reset", admin, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/organizations/"+org.ID, admin, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
