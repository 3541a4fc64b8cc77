package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/config"
	"touristiq/iqhub/internal/events"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/ratelimit"
	"touristiq/iqhub/internal/repository"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/crypto"
	jwtpkg "touristiq/iqhub/pkg/jwt"
	"touristiq/iqhub/pkg/response"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	codes  repository.IQCodeRepository
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Session: config.SessionConfig{CookieName: "session_token", TTL: time.Hour},
	}
	logger := zap.NewNop()
	db := repository.NewMemoryDB()
	codes := repository.NewMemoryIQCodeRepository(db)
	credits := repository.NewMemoryCreditRepository(db)
	otcs := repository.NewMemoryOneTimeCodeRepository(db)
	partners := repository.NewMemoryPartnerRepository(db)
	feedback := repository.NewMemoryFeedbackRepository(db)
	gen := codegen.NewWithSource(rand.NewPCG(7, 11))
	sealer, err := crypto.NewSealer("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	publisher := events.NewNoopPublisher()

	sessions := service.NewSessionService(codes, repository.NewMemorySessionStore(), jwtpkg.NewManager("k", "touristiq", time.Hour))
	codeSvc := service.NewCodeService(codes, gen, 10, logger)
	creditSvc := service.NewCreditService(codes, credits, logger)
	otcSvc := service.NewOTCService(otcs, codes, partners, gen, publisher, logger)
	recoverySvc := service.NewRecoveryService(repository.NewMemoryRecoveryRepository(db), sealer, logger)
	feedbackSvc := service.NewFeedbackService(feedback, otcs, publisher, logger)
	partnerSvc := service.NewPartnerService(partners, codes, feedback)

	router := SetupRouter(cfg, logger, sessions, limiter, Handlers{
		Auth:     NewAuthHandler(sessions, cfg.Session, logger),
		Admin:    NewAdminHandler(codeSvc, creditSvc, feedbackSvc, logger),
		Issuer:   NewIssuerHandler(codeSvc, creditSvc, logger),
		Tourist:  NewTouristHandler(otcSvc, feedbackSvc, partnerSvc, logger),
		Partner:  NewPartnerHandler(otcSvc, partnerSvc, feedbackSvc, logger),
		Recovery: NewRecoveryHandler(recoverySvc, logger),
	})
	return &testServer{t: t, router: router, codes: codes}
}

func (s *testServer) seed(code string, role model.Role) {
	s.t.Helper()
	err := s.codes.Create(context.Background(), &model.IQCode{
		Code: code, Role: role, IsActive: true, Status: model.CodeStatusApproved, AvailableOneTimeUses: 10,
	})
	if err != nil {
		s.t.Fatalf("seed %s: %v", code, err)
	}
}

func (s *testServer) do(method, path string, cookie *http.Cookie, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(code string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", nil, gin.H{"iqCode": code})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", code, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	s.t.Fatalf("login %s: no session cookie", code)
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	var body response.ErrorBody
	decode(t, w, &body)
	return body.ErrorKind
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	if w := s.do(http.MethodGet, "/healthz", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRoleGate(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-IT-ROMA", model.RoleTourist)
	tourist := s.login("TIQ-IT-ROMA")

	w := s.do(http.MethodPost, "/api/tourist/generate-one-time-code", nil, nil)
	if w.Code != http.StatusUnauthorized || errorKind(t, w) != response.KindUnauthenticated {
		t.Fatalf("anonymous: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/partner/validate-one-time-code", tourist, gin.H{"code": "TIQ-OTC-00001"})
	if w.Code != http.StatusForbidden || errorKind(t, w) != response.KindForbidden {
		t.Fatalf("wrong role: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/api/admin/iqcodes", tourist, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin route: %d", w.Code)
	}
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodPost, "/api/auth/login", nil, gin.H{"iqCode": "TIQ-IT-NOPE"})
	if w.Code != http.StatusUnauthorized || errorKind(t, w) != response.KindUnauthenticated {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
}

func TestMeAndLogout(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-VR-PRT-0001", model.RolePartner)
	cookie := s.login("TIQ-VR-PRT-0001")

	w := s.do(http.MethodGet, "/api/auth/me", cookie, nil)
	var me struct {
		IQCode string `json:"iqCode"`
		Role   string `json:"role"`
	}
	decode(t, w, &me)
	if me.IQCode != "TIQ-VR-PRT-0001" || me.Role != "partner" {
		t.Fatalf("me = %+v", me)
	}

	if w := s.do(http.MethodPost, "/api/auth/logout", cookie, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/auth/me", cookie, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", w.Code)
	}
}

func TestSessionIsReadFromCookieOnly(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-VR-PRT-0001", model.RolePartner)
	cookie := s.login("TIQ-VR-PRT-0001")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bearer token: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/auth/me", cookie, nil); w.Code != http.StatusOK {
		t.Fatalf("cookie: %d", w.Code)
	}
}

func TestOneTimeCodeFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-IT-ROMA", model.RoleTourist)
	s.seed("TIQ-VR-PRT-0001", model.RolePartner)
	tourist := s.login("TIQ-IT-ROMA")
	partner := s.login("TIQ-VR-PRT-0001")

	w := s.do(http.MethodPost, "/api/tourist/generate-one-time-code", tourist, nil)
	var issued struct {
		Code      string `json:"code"`
		Remaining int    `json:"remaining"`
	}
	decode(t, w, &issued)
	if w.Code != http.StatusOK || issued.Remaining != 9 {
		t.Fatalf("issue: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/partner/validate-one-time-code", partner, gin.H{"code": issued.Code})
	var v struct {
		Valid       bool   `json:"valid"`
		Used        bool   `json:"used"`
		TouristCode string `json:"touristIqCode"`
	}
	decode(t, w, &v)
	if !v.Valid || v.Used || v.TouristCode != "TIQ-IT-****" {
		t.Fatalf("validate = %+v", v)
	}

	w = s.do(http.MethodPost, "/api/partner/apply-discount", partner, gin.H{
		"code": issued.Code, "originalAmount": 100, "discountPercentage": 20, "offerDescription": "Cena",
	})
	var applied struct {
		OriginalAmount   float64 `json:"originalAmount"`
		DiscountAmount   float64 `json:"discountAmount"`
		FinalAmount      float64 `json:"finalAmount"`
		NewTotalUsed     float64 `json:"newTotalUsed"`
		RemainingPlafond float64 `json:"remainingPlafond"`
	}
	decode(t, w, &applied)
	if w.Code != http.StatusOK || applied.DiscountAmount != 20 || applied.FinalAmount != 80 || applied.RemainingPlafond != 130 {
		t.Fatalf("apply: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/partner/redemptions", partner, nil)
	var redemptions []struct {
		Code        string `json:"code"`
		TouristCode string `json:"touristIqCode"`
	}
	decode(t, w, &redemptions)
	if len(redemptions) != 1 || redemptions[0].TouristCode != "TIQ-IT-****" {
		t.Fatalf("redemptions = %s", w.Body.String())
	}
	w = s.do(http.MethodGet, "/api/tourist/one-time-codes", tourist, nil)
	var owned []struct {
		TouristCode string `json:"touristIqCode"`
	}
	decode(t, w, &owned)
	if len(owned) != 1 || owned[0].TouristCode != "TIQ-IT-ROMA" {
		t.Fatalf("tourist codes = %s", w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/partner/apply-discount", partner, gin.H{
		"code": issued.Code, "originalAmount": 100, "discountPercentage": 20,
	})
	if w.Code != http.StatusConflict || errorKind(t, w) != KindAlreadyUsed {
		t.Fatalf("second apply: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/tourist/plafond", tourist, nil)
	var plafond struct {
		TotalDiscountUsed float64 `json:"totalDiscountUsed"`
		RemainingPlafond  float64 `json:"remainingPlafond"`
	}
	decode(t, w, &plafond)
	if plafond.TotalDiscountUsed != 20 || plafond.RemainingPlafond != 130 {
		t.Fatalf("plafond = %+v", plafond)
	}

	w = s.do(http.MethodPost, "/api/feedback", tourist, gin.H{"partnerCode": "TIQ-VR-PRT-0001", "feedback": "positive"})
	if w.Code != http.StatusOK {
		t.Fatalf("feedback: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/feedback", tourist, gin.H{"partnerCode": "TIQ-VR-PRT-0001", "feedback": "positive"})
	if w.Code != http.StatusConflict || errorKind(t, w) != KindFeedbackExists {
		t.Fatalf("second feedback: %d %s", w.Code, w.Body.String())
	}
}

func TestApplyDiscountUnknownCode(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-VR-PRT-0001", model.RolePartner)
	partner := s.login("TIQ-VR-PRT-0001")

	w := s.do(http.MethodPost, "/api/partner/apply-discount", partner, gin.H{
		"code": "TIQ-OTC-00000", "originalAmount": "50.00", "discountPercentage": 10,
	})
	if w.Code != http.StatusNotFound || errorKind(t, w) != response.KindNotFound {
		t.Fatalf("apply: %d %s", w.Code, w.Body.String())
	}
}

func TestCustodeFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-IT-ROMA", model.RoleTourist)
	tourist := s.login("TIQ-IT-ROMA")

	body := gin.H{"secretWord": "secret", "birthDate": "1990-01-01"}
	if w := s.do(http.MethodPost, "/api/activate-custode", tourist, body); w.Code != http.StatusOK {
		t.Fatalf("activate: %d %s", w.Code, w.Body.String())
	}
	w := s.do(http.MethodPost, "/api/activate-custode", tourist, body)
	if w.Code != http.StatusConflict || errorKind(t, w) != KindAlreadyActivated {
		t.Fatalf("second activate: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/recover-iqcode", nil, gin.H{"secretWord": "SECRET", "birthDate": "1990-01-01"})
	var recovered struct {
		IQCode string `json:"iqCode"`
	}
	decode(t, w, &recovered)
	if recovered.IQCode != "TIQ-IT-ROMA" {
		t.Fatalf("recover: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/recover-iqcode", nil, gin.H{"secretWord": "wrong", "birthDate": "1990-01-01"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("wrong recover: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/custode-status", tourist, nil)
	var status struct {
		Activated bool `json:"activated"`
	}
	decode(t, w, &status)
	if !status.Activated {
		t.Fatalf("status: %s", w.Body.String())
	}
}

func TestRecoverIsRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Settings{Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute})
	s := newTestServer(t, limiter)
	body := gin.H{"secretWord": "guess", "birthDate": "2000-01-01"}

	for i := 0; i < 2; i++ {
		if w := s.do(http.MethodPost, "/api/recover-iqcode", nil, body); w.Code != http.StatusNotFound {
			t.Fatalf("attempt %d: %d", i, w.Code)
		}
	}
	w := s.do(http.MethodPost, "/api/recover-iqcode", nil, body)
	if w.Code != http.StatusTooManyRequests || errorKind(t, w) != response.KindRateLimited {
		t.Fatalf("throttled: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestValidateOneTimeCodeIsRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Settings{Capacity: 3, RefillTokens: 1, RefillInterval: time.Minute})
	s := newTestServer(t, limiter)
	s.seed("TIQ-VR-PRT-0001", model.RolePartner)
	partner := s.login("TIQ-VR-PRT-0001")

	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/partner/validate-one-time-code", partner, gin.H{"code": "TIQ-OTC-00001"})
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: %d", i, w.Code)
		}
	}
	w := s.do(http.MethodPost, "/api/partner/validate-one-time-code", partner, gin.H{"code": "TIQ-OTC-00002"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminIssuesPackageAndStructureGenerates(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed("TIQ-IT-ADMIN", model.RoleAdmin)
	admin := s.login("TIQ-IT-ADMIN")

	w := s.do(http.MethodPost, "/api/admin/iqcodes", admin, gin.H{"codeType": "professional", "role": "structure", "location": "VR"})
	var created struct {
		Code string `json:"code"`
	}
	decode(t, w, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/admin/iqcodes", admin, gin.H{"codeType": "professional", "role": "structure", "location": "VERONA"})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != KindInvalidLocationFormat {
		t.Fatalf("bad province: %d %s", w.Code, w.Body.String())
	}

	structure := s.login(created.Code)
	w = s.do(http.MethodPost, "/api/structure/generate-tourist-code", structure, gin.H{"location": "IT"})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != KindInsufficientCredits {
		t.Fatalf("no credits: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/admin/credit-packages", admin, gin.H{"recipientCode": created.Code, "packageSize": 25})
	if w.Code != http.StatusCreated {
		t.Fatalf("assign: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/structure/generate-tourist-code", structure, gin.H{"location": "IT"})
	var gen struct {
		Code             string `json:"code"`
		CreditsRemaining int    `json:"creditsRemaining"`
	}
	decode(t, w, &gen)
	if w.Code != http.StatusCreated || gen.CreditsRemaining != 24 {
		t.Fatalf("tourist code: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/structure/credits", structure, nil)
	var credits struct {
		CreditsRemaining int `json:"creditsRemaining"`
		CreditsUsed      int `json:"creditsUsed"`
	}
	decode(t, w, &credits)
	if credits.CreditsRemaining != 24 || credits.CreditsUsed != 1 {
		t.Fatalf("credits = %+v", credits)
	}

	w = s.do(http.MethodPatch, "/api/admin/iqcodes/"+gen.Code+"/status", admin, gin.H{"status": "blocked"})
	if w.Code != http.StatusOK {
		t.Fatalf("block: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodPost, "/api/auth/login", nil, gin.H{"iqCode": gen.Code})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("blocked login: %d", w.Code)
	}
}
