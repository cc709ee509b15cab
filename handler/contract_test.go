package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/model"
)

func TestContractSubmit(t *testing.T) {
	env := newTestEnv(t, nil)
	clientToken := env.token(t, "client-1", model.RoleClient)

	encoded, _ := json.Marshal(employmentData())

	tests := []struct {
		name           string
		token          string
		body           any
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "object data",
			token:          clientToken,
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": employmentData()},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "string encoded data",
			token:          clientToken,
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": string(encoded)},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed data string",
			token:          clientToken,
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": "{not json"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			token:          clientToken,
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": gin.H{"employerName": "Acme Corp"}},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"employeeName", "position"},
		},
		{
			name:           "unknown type",
			token:          clientToken,
			body:           gin.H{"contractTypeId": "nope", "lawyerId": "lawyer-1", "contractData": employmentData()},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "client as lawyer",
			token:          clientToken,
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "client-2", "contractData": employmentData()},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "lawyer cannot submit",
			token:          env.token(t, "lawyer-1", model.RoleLawyer),
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": employmentData()},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unauthenticated",
			body:           gin.H{"contractTypeId": env.employmentID, "lawyerId": "lawyer-1", "contractData": employmentData()},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad json",
			token:          clientToken,
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "POST", "/api/contracts/submit", tt.token, tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated {
				var body contractBody
				decode(t, w, &body)
				if body.Contract.Status != "pending" || !body.Contract.ClientSigned || body.Contract.LawyerSigned {
					t.Errorf("Unexpected contract: %+v", body.Contract)
				}
			}

			if len(tt.expectedFields) > 0 {
				var body struct {
					Error  string   `json:"error"`
					Fields []string `json:"fields"`
				}
				decode(t, w, &body)
				for _, f := range tt.expectedFields {
					if !strings.Contains(body.Error, f) {
						t.Errorf("Expected %s in error %q", f, body.Error)
					}
					found := false
					for _, got := range body.Fields {
						found = found || got == f
					}
					if !found {
						t.Errorf("Expected %s in fields %v", f, body.Fields)
					}
				}
			}
		})
	}
}

func TestContractGet(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.submit(t)

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
	}{
		{"client party", "/api/contracts/" + id, env.token(t, "client-1", model.RoleClient), http.StatusOK},
		{"lawyer party", "/api/contracts/" + id, env.token(t, "lawyer-1", model.RoleLawyer), http.StatusOK},
		{"other client", "/api/contracts/" + id, env.token(t, "client-2", model.RoleClient), http.StatusForbidden},
		{"unknown id", "/api/contracts/missing", env.token(t, "client-1", model.RoleClient), http.StatusNotFound},
		{"lawyer scoped", "/api/contracts/lawyer/" + id, env.token(t, "lawyer-1", model.RoleLawyer), http.StatusOK},
		{"other lawyer scoped", "/api/contracts/lawyer/" + id, env.token(t, "lawyer-2", model.RoleLawyer), http.StatusForbidden},
		{"client on lawyer route", "/api/contracts/lawyer/" + id, env.token(t, "client-1", model.RoleClient), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", tt.path, tt.token, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestContractGetResolvesParties(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.submit(t)

	w := env.do(t, "GET", "/api/contracts/"+id, env.token(t, "client-1", model.RoleClient), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Contract struct {
			ContractType struct {
				Name string `json:"name"`
			} `json:"contractType"`
			Client struct {
				Name string `json:"name"`
			} `json:"client"`
			Lawyer struct {
				Name           string `json:"name"`
				Specialization string `json:"specialization"`
			} `json:"lawyer"`
		} `json:"contract"`
	}
	decode(t, w, &body)

	if body.Contract.ContractType.Name != "Employment Contract" {
		t.Errorf("Expected resolved type, got %+v", body.Contract.ContractType)
	}
	if body.Contract.Client.Name != "Carla Client" || body.Contract.Lawyer.Name != "Lena Lawyer" {
		t.Errorf("Expected resolved parties, got %+v", body.Contract)
	}
}

func TestContractUpdateStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	lawyerToken := env.token(t, "lawyer-1", model.RoleLawyer)

	t.Run("reject with reason", func(t *testing.T) {
		id := env.submit(t)
		w := env.do(t, "PUT", "/api/contracts/lawyer/"+id, lawyerToken, gin.H{"status": "rejected", "rejectionReason": "Salary missing currency"})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var body contractBody
		decode(t, w, &body)
		if body.Contract.Status != "rejected" || model.Deref(body.Contract.RejectionReason) != "Salary missing currency" {
			t.Errorf("Unexpected contract: %+v", body.Contract)
		}

		// rejected is terminal
		w = env.do(t, "PATCH", "/api/contracts/lawyer/"+id, lawyerToken, gin.H{"status": "verified"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 leaving rejected, got %d", w.Code)
		}
	})

	tests := []struct {
		name           string
		token          string
		status         string
		expectedStatus int
	}{
		{"verify", lawyerToken, "verified", http.StatusOK},
		{"signed needs signature", lawyerToken, "signed", http.StatusBadRequest},
		{"unknown status", lawyerToken, "archived", http.StatusBadRequest},
		{"expired unreachable", lawyerToken, "expired", http.StatusBadRequest},
		{"other lawyer", env.token(t, "lawyer-2", model.RoleLawyer), "verified", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := env.submit(t)
			w := env.do(t, "PATCH", "/api/contracts/lawyer/"+id, tt.token, gin.H{"status": tt.status})
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestContractSign(t *testing.T) {
	docs := &fakeDocuments{}
	env := newTestEnv(t, docs)
	lawyerToken := env.token(t, "lawyer-1", model.RoleLawyer)
	id := env.submit(t)

	w := env.do(t, "POST", "/api/contracts/lawyer/"+id+"/sign", env.token(t, "lawyer-2", model.RoleLawyer), gin.H{"signature": "Leo"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for other lawyer, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/contracts/lawyer/"+id+"/sign", lawyerToken, gin.H{"signature": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without signature, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/contracts/lawyer/"+id+"/sign", lawyerToken, gin.H{"signature": "Lena Lawyer"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var body contractBody
	decode(t, w, &body)
	if body.Contract.Status != "signed" || !body.Contract.LawyerSigned || body.Contract.IssueDate == nil {
		t.Errorf("Unexpected contract: %+v", body.Contract)
	}

	env.contracts.Wait()
	if got := docs.ids(); len(got) != 1 || got[0] != id {
		t.Errorf("Expected document generation for %s, got %v", id, got)
	}

	w = env.do(t, "POST", "/api/contracts/lawyer/"+id+"/sign", lawyerToken, gin.H{"signature": "Again"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 signing twice, got %d", w.Code)
	}
}

func TestContractLists(t *testing.T) {
	env := newTestEnv(t, nil)
	lawyerToken := env.token(t, "lawyer-1", model.RoleLawyer)

	first := env.submit(t)
	second := env.submit(t)
	if w := env.do(t, "POST", "/api/contracts/lawyer/"+first+"/sign", lawyerToken, gin.H{"signature": "Lena"}); w.Code != http.StatusOK {
		t.Fatalf("Sign: %d %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name          string
		path          string
		token         string
		expectedCount int
		expectedFirst string
	}{
		{"mine", "/api/contracts/my", env.token(t, "client-1", model.RoleClient), 2, second},
		{"mine other client", "/api/contracts/my", env.token(t, "client-2", model.RoleClient), 0, ""},
		{"pending", "/api/contracts/lawyer/pending", lawyerToken, 1, second},
		{"signed", "/api/contracts/lawyer/signed", lawyerToken, 1, first},
		{"pending other lawyer", "/api/contracts/lawyer/pending", env.token(t, "lawyer-2", model.RoleLawyer), 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", tt.path, tt.token, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var body struct {
				Contracts []struct {
					ID string `json:"id"`
				} `json:"contracts"`
				Count int `json:"count"`
			}
			decode(t, w, &body)
			if body.Count != tt.expectedCount || len(body.Contracts) != tt.expectedCount {
				t.Fatalf("Expected %d contracts, got count=%d len=%d", tt.expectedCount, body.Count, len(body.Contracts))
			}
			if tt.expectedFirst != "" && body.Contracts[0].ID != tt.expectedFirst {
				t.Errorf("Expected newest first %s, got %s", tt.expectedFirst, body.Contracts[0].ID)
			}
		})
	}
}

func TestContractDownload(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		id := env.submit(t)

		w := env.do(t, "GET", "/api/contracts/"+id+"/download", env.token(t, "client-1", model.RoleClient), nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for pending contract, got %d", w.Code)
		}

		env.do(t, "POST", "/api/contracts/lawyer/"+id+"/sign", env.token(t, "lawyer-1", model.RoleLawyer), gin.H{"signature": "Lena"})
		w = env.do(t, "GET", "/api/contracts/"+id+"/download", env.token(t, "client-1", model.RoleClient), nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 without document, got %d", w.Code)
		}
	})

	t.Run("storage enabled", func(t *testing.T) {
		env := newTestEnv(t, &fakeDocuments{})
		id := env.submit(t)

		w := env.do(t, "GET", "/api/contracts/"+id+"/download", env.token(t, "client-1", model.RoleClient), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var body struct {
			DownloadURL string `json:"downloadUrl"`
		}
		decode(t, w, &body)
		if body.DownloadURL != "https://files.test/"+id+"?user=client-1" {
			t.Errorf("Unexpected url %s", body.DownloadURL)
		}
	})
}

func TestDecodeContractData(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"null", "null", 0, false},
		{"object", `{"a":"b","c":1}`, 2, false},
		{"string", `"{\"a\":\"b\"}"`, 1, false},
		{"bad string", `"{a"`, 0, true},
		{"array", `[1,2]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := decodeContractData(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if len(data) != tt.wantLen {
				t.Errorf("Expected %d keys, got %d", tt.wantLen, len(data))
			}
		})
	}
}
