package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/middleware"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"github.com/rahulraut1220/LegalEase/service"
)

const documentTimeout = time.Minute

// Documents renders signed contracts and hands out download links
type Documents interface {
	Generate(ctx context.Context, id string) (string, error)
	DownloadURL(ctx context.Context, p service.Principal, id string) (string, error)
}

type ContractHandler struct {
	contracts *service.ContractService
	documents Documents
	jobs      sync.WaitGroup
}

// NewContractHandler builds the contract routes. documents may be nil when
// object storage is not configured.
func NewContractHandler(contracts *service.ContractService, documents Documents) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		documents: documents,
	}
}

type SubmitRequest struct {
	ContractTypeID string          `json:"contractTypeId"`
	LawyerID       string          `json:"lawyerId"`
	ContractData   json.RawMessage `json:"contractData"`
}

type UpdateStatusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

type SignRequest struct {
	Signature string `json:"signature"`
}

// Submit opens a contract for the calling client
func (h *ContractHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	data, err := decodeContractData(req.ContractData)
	if err != nil {
		badRequest(c, "Invalid contractData format")
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), middleware.GetPrincipal(c), service.CreateContractInput{
		ContractTypeID: req.ContractTypeID,
		LawyerID:       req.LawyerID,
		ContractData:   data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Contract created successfully",
		"contract": contract,
	})
}

// decodeContractData accepts an object or a JSON string holding one, as sent
// by multipart style clients.
func decodeContractData(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = []byte(s)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Mine lists the calling client's contracts
func (h *ContractHandler) Mine(c *gin.Context) {
	h.respondList(c, h.contracts.ListForClient)
}

// Pending lists contracts awaiting the calling lawyer
func (h *ContractHandler) Pending(c *gin.Context) {
	h.respondList(c, h.contracts.ListPending)
}

// Signed lists contracts the calling lawyer has signed
func (h *ContractHandler) Signed(c *gin.Context) {
	h.respondList(c, h.contracts.ListSigned)
}

func (h *ContractHandler) respondList(c *gin.Context, list func(context.Context, service.Principal) ([]*model.Contract, error)) {
	ctx := c.Request.Context()
	contracts, err := list(ctx, middleware.GetPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}

	result := make([]*service.ContractDetail, 0, len(contracts))
	for _, contract := range contracts {
		detail, err := h.contracts.Detail(ctx, contract)
		if err != nil {
			writeError(c, err)
			return
		}
		result = append(result, detail)
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": result,
		"count":     len(result),
	})
}

// Get returns a contract to either of its parties
func (h *ContractHandler) Get(c *gin.Context) {
	h.respondDetail(c, h.contracts.Get)
}

// GetForLawyer returns a contract to its assigned lawyer
func (h *ContractHandler) GetForLawyer(c *gin.Context) {
	h.respondDetail(c, h.contracts.GetForLawyer)
}

func (h *ContractHandler) respondDetail(c *gin.Context, get func(context.Context, service.Principal, string) (*model.Contract, error)) {
	ctx := c.Request.Context()
	contract, err := get(ctx, middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	detail, err := h.contracts.Detail(ctx, contract)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": detail})
}

// UpdateStatus verifies or rejects a contract
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	contract, err := h.contracts.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Status, req.RejectionReason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Contract status updated successfully",
		"contract": contract,
	})
}

// Sign records the lawyer's signature and schedules the contract document
func (h *ContractHandler) Sign(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	contract, err := h.contracts.Sign(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Signature)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.documents != nil {
		h.jobs.Add(1)
		go h.generateDocument(context.WithoutCancel(c.Request.Context()), contract.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Contract signed successfully",
		"contract": contract,
	})
}

// generateDocument runs after the response is sent. A failure leaves the
// contract signed without a document.
func (h *ContractHandler) generateDocument(ctx context.Context, id string) {
	defer h.jobs.Done()

	ctx, cancel := context.WithTimeout(ctx, documentTimeout)
	defer cancel()

	if _, err := h.documents.Generate(ctx, id); err != nil {
		logger.Error(ctx, "contract document generation failed", "contract_id", id, "error", err)
	}
}

// Wait blocks until scheduled document jobs have finished
func (h *ContractHandler) Wait() {
	h.jobs.Wait()
}

// Download returns a presigned link to the contract document
func (h *ContractHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	p := middleware.GetPrincipal(c)

	if h.documents == nil {
		if _, err := h.contracts.DocumentLocation(ctx, p, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	}

	url, err := h.documents.DownloadURL(ctx, p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
