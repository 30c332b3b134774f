package server

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/config"
	"github.com/farellandr/rifas/internal/auth"
	"github.com/farellandr/rifas/internal/gateway"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/models"
	"github.com/farellandr/rifas/internal/services"
	"github.com/farellandr/rifas/internal/testutil"
)

const callbackToken = "test-callback-token"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	requests []gateway.InvoiceRequest
	err      error
}

func (f *fakeGateway) CreateInvoice(_ context.Context, req gateway.InvoiceRequest) (*gateway.Invoice, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Invoice{ID: "inv-" + req.ExternalID, URL: "https://checkout.test/" + req.ExternalID}, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenManager
	cfg    *config.Config
}

func newTestServer(t *testing.T, gw gateway.Gateway) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		JWTSecret:     testutil.TestJWTSecret,
		UploadDir:     t.TempDir(),
		PublicBaseURL: "https://rifas.test",
		Xendit:        config.XenditConfig{CallbackToken: callbackToken},
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Hour)

	return &testServer{
		router: NewRouter(Dependencies{Config: cfg, DB: db, Tokens: tokens, Gateway: gw}),
		db:     db,
		tokens: tokens,
		cfg:    cfg,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, _, err := s.tokens.Generate(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

type createPaymentResponse struct {
	Success         bool            `json:"success"`
	PaymentID       uuid.UUID       `json:"paymentId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	SelectedNumbers []string        `json:"selectedNumbers"`
	PaymentURL      string          `json:"paymentUrl"`
}

func (s *testServer) createPayment(t *testing.T, raffleID uuid.UUID, method string, numbers ...string) createPaymentResponse {
	t.Helper()
	w := s.do(testutil.MakeRequest(http.MethodPost, "/payments/create", gin.H{
		"rifaId":          raffleID,
		"selectedNumbers": numbers,
		"userInfo":        gin.H{"name": "Ana", "email": "ana@example.com", "phone": "555"},
		"paymentMethod":   method,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp createPaymentResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "OK" {
		t.Errorf("Expected OK, got %q", w.Body.String())
	}
}

func TestPurchaseFlow(t *testing.T) {
	s := newTestServer(t, nil)
	raffle := testutil.CreateTestRaffle(t, s.db, "25.00", 200, models.RaffleActive)

	created := s.createPayment(t, raffle.ID, models.MethodZelle, "007", "123")
	if !created.Success || !created.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("Unexpected create response: %+v", created)
	}
	if created.PaymentURL != "" {
		t.Errorf("Expected no checkout link without a gateway, got %q", created.PaymentURL)
	}

	w := s.do(httptest.NewRequest(http.MethodGet, "/payments/status/"+created.PaymentID.String(), nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var status struct {
		Payment struct {
			Status string `json:"status"`
			User   struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"payment"`
	}
	testutil.AssertJSON(t, w, &status)
	if status.Payment.Status != models.PaymentPending || status.Payment.User.Email != "ana@example.com" {
		t.Errorf("Unexpected status payload: %+v", status)
	}

	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/update-proof", gin.H{
		"paymentId":     created.PaymentID,
		"proofImageUrl": "https://img.test/proof.png",
		"zelleEmail":    "ana@bank.test",
		"reference":     "ZL-991",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	verify := gin.H{"paymentId": created.PaymentID, "status": models.PaymentCompleted}
	w = s.do(testutil.MakeRequest(http.MethodPatch, "/admin/payments", verify, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = s.do(testutil.MakeRequest(http.MethodPatch, "/admin/payments", verify, s.adminHeaders(t)))
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, number := range []string{"007", "123"} {
		n := testutil.GetNumber(t, s.db, raffle.ID, number)
		if n.Status != models.NumberPaid || n.PaymentID == nil || *n.PaymentID != created.PaymentID {
			t.Errorf("Number %s not paid by the payment: %+v", number, n)
		}
	}
	payment := testutil.GetPayment(t, s.db, created.PaymentID)
	if payment.ProofReference == nil || *payment.ProofReference != "ZL-991" {
		t.Errorf("Expected buyer reference to be kept, got %v", payment.ProofReference)
	}
	if payment.Reference == nil || !strings.HasPrefix(*payment.Reference, "ADMIN_VERIFIED_") {
		t.Errorf("Expected verification reference, got %v", payment.Reference)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/payments/receipt/"+created.PaymentID.String(), nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png receipt, got %q", ct)
	}

	payload := helpers.NewReceiptSigner(s.cfg.JWTSecret).Payload(payment.ID, payment.RaffleID, payment.Numbers)
	w = s.do(testutil.MakeRequest(http.MethodPost, "/admin/receipts/validate", gin.H{"qr_data": payload}, s.adminHeaders(t)))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/admin/receipts/validate", gin.H{"qr_data": payload + "0"}, s.adminHeaders(t)))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCreatePaymentErrors(t *testing.T) {
	s := newTestServer(t, nil)
	active := testutil.CreateTestRaffle(t, s.db, "10.00", 100, models.RaffleActive)
	closed := testutil.CreateTestRaffle(t, s.db, "10.00", 100, models.RaffleCompleted)
	s.createPayment(t, active.ID, models.MethodCash, "005")

	buyer := gin.H{"name": "Ben", "email": "ben@example.com"}
	tests := []struct {
		name           string
		body           gin.H
		expectedStatus int
	}{
		{"taken number", gin.H{"rifaId": active.ID, "selectedNumbers": []string{"005", "006"}, "userInfo": buyer}, http.StatusBadRequest},
		{"duplicate number", gin.H{"rifaId": active.ID, "selectedNumbers": []string{"006", "006"}, "userInfo": buyer}, http.StatusBadRequest},
		{"no numbers", gin.H{"rifaId": active.ID, "selectedNumbers": []string{}, "userInfo": buyer}, http.StatusBadRequest},
		{"missing buyer", gin.H{"rifaId": active.ID, "selectedNumbers": []string{"006"}}, http.StatusBadRequest},
		{"bad raffle id", gin.H{"rifaId": "nope", "selectedNumbers": []string{"006"}, "userInfo": buyer}, http.StatusBadRequest},
		{"unknown raffle", gin.H{"rifaId": uuid.New(), "selectedNumbers": []string{"006"}, "userInfo": buyer}, http.StatusNotFound},
		{"closed raffle", gin.H{"rifaId": closed.ID, "selectedNumbers": []string{"006"}, "userInfo": buyer}, http.StatusNotFound},
		{"bad method", gin.H{"rifaId": active.ID, "selectedNumbers": []string{"006"}, "userInfo": buyer, "paymentMethod": "admin_assign"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(testutil.MakeRequest(http.MethodPost, "/payments/create", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	if got := testutil.CountPayments(t, s.db); got != 1 {
		t.Errorf("Expected only the first payment, got %d", got)
	}
	if n := testutil.GetNumber(t, s.db, active.ID, "006"); n.Status != models.NumberAvailable {
		t.Errorf("Number 006 should still be available, got %s", n.Status)
	}
}

func TestGatewayCheckoutAndWebhook(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestServer(t, gw)
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)

	created := s.createPayment(t, raffle.ID, models.MethodCard, "010")
	if created.PaymentURL != "https://checkout.test/"+created.PaymentID.String() {
		t.Errorf("Unexpected checkout link %q", created.PaymentURL)
	}
	if len(gw.requests) != 1 || gw.requests[0].SuccessURL != "https://rifas.test/pago/"+created.PaymentID.String() {
		t.Fatalf("Unexpected invoice requests: %+v", gw.requests)
	}

	payment := testutil.GetPayment(t, s.db, created.PaymentID)
	if payment.GatewayInvoiceID == nil || *payment.GatewayInvoiceID != "inv-"+created.PaymentID.String() {
		t.Errorf("Invoice not recorded on payment: %v", payment.GatewayInvoiceID)
	}
	if payment.Status != models.PaymentPending {
		t.Errorf("Opening an invoice must not settle the payment, got %s", payment.Status)
	}

	callback := gin.H{"id": "inv-1", "external_id": created.PaymentID, "status": "PAID", "paid_amount": 5}
	w := s.do(testutil.MakeRequest(http.MethodPost, "/payments/webhook/xendit", callback, map[string]string{"X-CALLBACK-TOKEN": "wrong"}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	headers := map[string]string{"X-CALLBACK-TOKEN": callbackToken}
	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/webhook/xendit", callback, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := testutil.GetNumber(t, s.db, raffle.ID, "010"); n.Status != models.NumberPaid {
		t.Errorf("Expected number paid after callback, got %s", n.Status)
	}

	// Retried callbacks are acknowledged without changes.
	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/webhook/xendit", callback, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/webhook/xendit",
		gin.H{"external_id": created.PaymentID, "status": "PENDING"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	if p := testutil.GetPayment(t, s.db, created.PaymentID); p.Status != models.PaymentCompleted {
		t.Errorf("Ignored callback changed payment to %s", p.Status)
	}
}

func TestGatewayFailureLeavesPaymentPending(t *testing.T) {
	s := newTestServer(t, &fakeGateway{err: errors.New("gateway down")})
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)

	created := s.createPayment(t, raffle.ID, models.MethodCard, "011")
	if created.PaymentURL != "" {
		t.Errorf("Expected no checkout link, got %q", created.PaymentURL)
	}
	if n := testutil.GetNumber(t, s.db, raffle.ID, "011"); n.Status != models.NumberReserved {
		t.Errorf("Expected number to stay reserved, got %s", n.Status)
	}
}

func TestReceiptRequiresCompletedPayment(t *testing.T) {
	s := newTestServer(t, nil)
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)
	created := s.createPayment(t, raffle.ID, models.MethodPagoMovil, "001")

	w := s.do(httptest.NewRequest(http.MethodGet, "/payments/receipt/"+created.PaymentID.String(), nil))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = s.do(httptest.NewRequest(http.MethodGet, "/payments/receipt/"+uuid.NewString(), nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUploadProofMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)
	created := s.createPayment(t, raffle.ID, models.MethodPagoMovil, "002")

	png, err := qrcode.Encode("proof", qrcode.Low, 64)
	if err != nil {
		t.Fatalf("Failed to build test image: %v", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	mw.WriteField("paymentId", created.PaymentID.String())
	mw.WriteField("bankOrigin", "Banesco")
	mw.WriteField("phone", "0414-0000000")
	mw.WriteField("cedula", "V-12345678")
	mw.WriteField("reference", "PM-55")
	part, err := mw.CreateFormFile("file", "proof.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write(png)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/payments/update-proof", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		URL string `json:"url"`
	}
	testutil.AssertJSON(t, w, &resp)
	if !strings.HasPrefix(resp.URL, "/uploads/payment-proofs/") {
		t.Fatalf("Unexpected proof url %q", resp.URL)
	}
	stored := filepath.Join(s.cfg.UploadDir, filepath.FromSlash(strings.TrimPrefix(resp.URL, "/uploads/")))
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("Uploaded proof not stored: %v", err)
	}

	payment := testutil.GetPayment(t, s.db, created.PaymentID)
	if payment.SenderID == nil || *payment.SenderID != "V-12345678" || payment.ProofSubmittedAt == nil {
		t.Errorf("Proof details not recorded: %+v", payment)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, resp.URL, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestProofErrors(t *testing.T) {
	s := newTestServer(t, nil)
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)
	created := s.createPayment(t, raffle.ID, models.MethodZelle, "003")

	w := s.do(testutil.MakeRequest(http.MethodPost, "/payments/update-proof", gin.H{"paymentId": created.PaymentID}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/update-proof",
		gin.H{"paymentId": uuid.New(), "reference": "X"}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = s.do(testutil.MakeRequest(http.MethodPatch, "/admin/payments",
		gin.H{"paymentId": created.PaymentID, "status": models.PaymentFailed}, s.adminHeaders(t)))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/payments/update-proof",
		gin.H{"paymentId": created.PaymentID, "reference": "late"}, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestAdminVerifyErrors(t *testing.T) {
	s := newTestServer(t, nil)
	raffle := testutil.CreateTestRaffle(t, s.db, "5.00", 100, models.RaffleActive)
	created := s.createPayment(t, raffle.ID, models.MethodZelle, "004")
	headers := s.adminHeaders(t)

	tests := []struct {
		name           string
		body           gin.H
		expectedStatus int
	}{
		{"bad status", gin.H{"paymentId": created.PaymentID, "status": "approved"}, http.StatusBadRequest},
		{"unknown payment", gin.H{"paymentId": uuid.New(), "status": models.PaymentCompleted}, http.StatusNotFound},
		{"missing status", gin.H{"paymentId": created.PaymentID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(testutil.MakeRequest(http.MethodPatch, "/admin/payments", tt.body, headers))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestAdminRaffleAndAssignment(t *testing.T) {
	s := newTestServer(t, nil)
	headers := s.adminHeaders(t)

	w := s.do(testutil.MakeRequest(http.MethodPost, "/admin/rifas", gin.H{
		"title":             "Moto",
		"prize_description": "A motorcycle",
		"ticket_price":      "2.50",
		"total_numbers":     50,
		"start_date":        "2026-01-01",
		"end_date":          "2026-02-01T18:00",
		"draw_date":         "2026-02-02T20:00:00Z",
	}, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created struct {
		Rifa models.Raffle `json:"rifa"`
	}
	testutil.AssertJSON(t, w, &created)

	w = s.do(httptest.NewRequest(http.MethodGet, "/rifas/"+created.Rifa.ID.String()+"/numbers", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var pool struct {
		Numbers []services.NumberStatus `json:"numbers"`
	}
	testutil.AssertJSON(t, w, &pool)
	if len(pool.Numbers) != 50 || pool.Numbers[0].Number != "000" {
		t.Fatalf("Unexpected pool: %d numbers", len(pool.Numbers))
	}

	w = s.do(testutil.MakeRequest(http.MethodPost, "/admin/users",
		gin.H{"name": "Carla", "email": "carla@example.com"}, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var user struct {
		User models.User `json:"user"`
	}
	testutil.AssertJSON(t, w, &user)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/admin/numbers/assign", gin.H{
		"rifaId":  created.Rifa.ID,
		"userId":  user.User.ID,
		"numbers": []string{"010", "011"},
	}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := testutil.CountNumbers(t, s.db, created.Rifa.ID, models.NumberPaid); got != 2 {
		t.Errorf("Expected 2 paid numbers, got %d", got)
	}

	w = s.do(testutil.MakeRequest(http.MethodPatch, "/admin/rifas/"+created.Rifa.ID.String(),
		gin.H{"status": models.RaffleCompleted}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(httptest.NewRequest(http.MethodGet, "/rifas", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var list struct {
		Rifas []services.RaffleSummary `json:"rifas"`
	}
	testutil.AssertJSON(t, w, &list)
	if len(list.Rifas) != 0 {
		t.Errorf("Completed raffle still listed: %+v", list.Rifas)
	}

	w = s.do(testutil.MakeRequest(http.MethodGet, "/admin/dashboard", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	w = s.do(testutil.MakeRequest(http.MethodGet, "/admin/users", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	w = s.do(testutil.MakeRequest(http.MethodGet, "/admin/payments?status=completed", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)
	w = s.do(testutil.MakeRequest(http.MethodGet, "/admin/payments?status=bogus", nil, headers))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestLoginAndSettings(t *testing.T) {
	s := newTestServer(t, nil)
	if _, err := services.NewAdminService(s.db).EnsureAdmin(context.Background(), "admin", "admin@example.com", "s3cret"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	w := s.do(testutil.MakeRequest(http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "wrong"}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = s.do(testutil.MakeRequest(http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "s3cret"}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("Expected HttpOnly session cookie, got %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(cookie)
	testutil.AssertStatus(t, s.do(req), http.StatusOK)

	update := gin.H{"settings": gin.H{"zelle_email": "pagos@rifas.test"}}
	w = s.do(testutil.MakeRequest(http.MethodPut, "/settings", update, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	req = testutil.MakeRequest(http.MethodPut, "/settings", update, nil)
	req.AddCookie(cookie)
	testutil.AssertStatus(t, s.do(req), http.StatusOK)

	w = s.do(httptest.NewRequest(http.MethodGet, "/settings", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var got struct {
		Settings map[string]string `json:"settings"`
	}
	testutil.AssertJSON(t, w, &got)
	if got.Settings["zelle_email"] != "pagos@rifas.test" {
		t.Errorf("Setting not stored: %v", got.Settings)
	}
}
