package handler

import (
	"net/http"
	"testing"

	"github.com/rahulraut1220/LegalEase/model"
)

func TestCatalogTypes(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, "GET", "/api/contracts/types", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list struct {
		ContractTypes []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"contractTypes"`
		Count int `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 6 || len(list.ContractTypes) != 6 {
		t.Fatalf("Expected 6 contract types, got %d", list.Count)
	}

	w = env.do(t, "GET", "/api/contracts/types/"+env.employmentID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var one struct {
		ContractType struct {
			Name           string `json:"name"`
			RequiredFields []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"requiredFields"`
		} `json:"contractType"`
	}
	decode(t, w, &one)
	if one.ContractType.Name != "Employment Contract" || len(one.ContractType.RequiredFields) == 0 {
		t.Errorf("Unexpected contract type %+v", one.ContractType)
	}

	if w := env.do(t, "GET", "/api/contracts/types/missing", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCatalogLawyers(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		expectedCount  int
	}{
		{"client", env.token(t, "client-1", model.RoleClient), http.StatusOK, 2},
		{"lawyer forbidden", env.token(t, "lawyer-1", model.RoleLawyer), http.StatusForbidden, 0},
		{"anonymous", "", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", "/api/contracts/lawyers", tt.token, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code != http.StatusOK {
				return
			}
			var body struct {
				Lawyers []map[string]any `json:"lawyers"`
				Count   int              `json:"count"`
			}
			decode(t, w, &body)
			if body.Count != tt.expectedCount {
				t.Errorf("Expected %d lawyers, got %d", tt.expectedCount, body.Count)
			}
			for _, l := range body.Lawyers {
				if _, leaked := l["passwordHash"]; leaked {
					t.Error("Lawyer listing must not expose password hashes")
				}
			}
		})
	}
}

func TestCatalogSeed(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.do(t, "POST", "/api/admin/seed", env.token(t, "client-1", model.RoleClient), nil); w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for client, got %d", w.Code)
	}

	w := env.do(t, "POST", "/api/admin/seed", env.token(t, "admin-1", model.RoleAdmin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Seeded ids are stable, so existing contracts keep resolving.
	if w := env.do(t, "GET", "/api/contracts/types/"+env.employmentID, "", nil); w.Code != http.StatusOK {
		t.Errorf("Expected employment type to survive reseed, got %d", w.Code)
	}
}
