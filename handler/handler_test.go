package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/config"
	"github.com/rahulraut1220/LegalEase/middleware"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeDocuments records generation requests instead of rendering PDFs
type fakeDocuments struct {
	mu        sync.Mutex
	generated []string
}

func (d *fakeDocuments) Generate(_ context.Context, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generated = append(d.generated, id)
	return "contracts/" + id + "/doc.pdf", nil
}

func (d *fakeDocuments) DownloadURL(_ context.Context, p service.Principal, id string) (string, error) {
	return "https://files.test/" + id + "?user=" + p.UserID, nil
}

func (d *fakeDocuments) ids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.generated...)
}

type testEnv struct {
	router       *gin.Engine
	store        *service.MemoryStore
	cfg          *config.AuthConfig
	contracts    *ContractHandler
	employmentID string
}

func newTestEnv(t *testing.T, docs Documents) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := service.NewMemoryStore()

	types, err := service.SeedContractTypes(ctx, store)
	if err != nil {
		t.Fatalf("SeedContractTypes: %v", err)
	}
	var employmentID string
	for _, ct := range types {
		if ct.Name == "Employment Contract" {
			employmentID = ct.ID
		}
	}
	if employmentID == "" {
		t.Fatal("Employment Contract type not seeded")
	}

	for _, u := range []*model.User{
		{ID: "client-1", Name: "Carla Client", Email: "carla@example.com", Role: model.RoleClient},
		{ID: "client-2", Name: "Cody Client", Email: "cody@example.com", Role: model.RoleClient},
		{ID: "lawyer-1", Name: "Lena Lawyer", Email: "lena@example.com", Role: model.RoleLawyer, Specialization: "Employment"},
		{ID: "lawyer-2", Name: "Leo Lawyer", Email: "leo@example.com", Role: model.RoleLawyer, Specialization: "Property"},
		{ID: "admin-1", Name: "Ada Admin", Email: "ada@example.com", Role: model.RoleAdmin},
	} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	cfg := &config.AuthConfig{JWTSecret: "test-secret", TokenExpireHours: 1}
	contracts := service.NewContractService(store, nil)
	contractHandler := NewContractHandler(contracts, docs)

	router := gin.New()
	Register(router.Group("/api"), cfg, Handlers{
		Auth:      NewAuthHandler(service.NewAuthService(store, middleware.TokenIssuer(cfg))),
		Contracts: contractHandler,
		Catalog:   NewCatalogHandler(contracts, store),
	})

	return &testEnv{
		router:       router,
		store:        store,
		cfg:          cfg,
		contracts:    contractHandler,
		employmentID: employmentID,
	}
}

func (e *testEnv) token(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	token, _, err := middleware.GenerateToken(userID, userID+"@example.com", role, e.cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func employmentData() map[string]any {
	return map[string]any{
		"employerName":      "Acme Corp",
		"employeeName":      "Jane Doe",
		"position":          "Engineer",
		"startDate":         "2024-06-01",
		"salary":            85000,
		"paymentFrequency":  "Monthly",
		"workHours":         "40 per week",
		"benefitsProvided":  "Health insurance",
		"terminationNotice": "30 days",
		"probationPeriod":   "3 months",
	}
}

type contractBody struct {
	Contract struct {
		ID              string  `json:"id"`
		Status          string  `json:"status"`
		ClientSigned    bool    `json:"clientSigned"`
		LawyerSigned    bool    `json:"lawyerSigned"`
		RejectionReason *string `json:"rejectionReason"`
		IssueDate       *string `json:"issueDate"`
	} `json:"contract"`
}

// submit creates an employment contract for client-1 assigned to lawyer-1
func (e *testEnv) submit(t *testing.T) string {
	t.Helper()
	w := e.do(t, "POST", "/api/contracts/submit", e.token(t, "client-1", model.RoleClient), gin.H{
		"contractTypeId": e.employmentID,
		"lawyerId":       "lawyer-1",
		"contractData":   employmentData(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var body contractBody
	decode(t, w, &body)
	return body.Contract.ID
}
