package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID string
	Role   model.Role
}

// TransitionObserver is notified of every committed status change
type TransitionObserver interface {
	ObserveTransition(from, to model.Status)
}

// CreateContractInput is what a client submits to open a contract
type CreateContractInput struct {
	ContractTypeID string
	LawyerID       string
	ContractData   map[string]any
}

// ContractDetail is a contract with its type and parties resolved
type ContractDetail struct {
	*model.Contract
	ContractType *model.ContractType `json:"contractType"`
	Client       *model.Party        `json:"client"`
	Lawyer       *model.Party        `json:"lawyer"`
}

type ContractService struct {
	store    Store
	observer TransitionObserver
	now      func() time.Time
}

func NewContractService(store Store, observer TransitionObserver) *ContractService {
	return &ContractService{
		store:    store,
		observer: observer,
		now:      time.Now,
	}
}

// Create opens a pending contract on behalf of a client. Submitting counts as
// the client's signature.
func (s *ContractService) Create(ctx context.Context, p Principal, in CreateContractInput) (*model.Contract, error) {
	if p.Role != model.RoleClient {
		return nil, unauthorized("Only clients can submit contracts")
	}
	if strings.TrimSpace(in.ContractTypeID) == "" {
		return nil, invalid("Invalid or missing contractTypeId")
	}
	if strings.TrimSpace(in.LawyerID) == "" {
		return nil, invalid("Invalid or missing lawyerId")
	}

	ct, err := s.store.GetContractType(ctx, in.ContractTypeID)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Contract type not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contract type: %w", err)
	}

	lawyer, err := s.store.GetUser(ctx, in.LawyerID)
	if errors.Is(err, ErrNotFound) || (err == nil && lawyer.Role != model.RoleLawyer) {
		return nil, notFound("Lawyer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer: %w", err)
	}

	data := in.ContractData
	if data == nil {
		data = map[string]any{}
	}
	if errs := ct.ValidateData(data); !errs.Empty() {
		return nil, &Error{Kind: KindValidation, Message: errs.Error(), Fields: errs.Fields()}
	}

	now := s.now()
	contract := &model.Contract{
		ID:             uuid.New().String(),
		ContractTypeID: ct.ID,
		ClientID:       p.UserID,
		LawyerID:       lawyer.ID,
		ContractData:   data,
		Status:         model.StatusPending,
		ClientSigned:   true,
		LawyerSigned:   false,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	logger.Info(ctx, "contract created",
		"contract_id", contract.ID,
		"contract_type", ct.Name,
		"lawyer_id", lawyer.ID,
	)
	return contract, nil
}

// Get returns a contract to either of its parties
func (s *ContractService) Get(ctx context.Context, p Principal, id string) (*model.Contract, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(p.UserID) {
		return nil, unauthorized("Not authorized to access this contract")
	}
	return c, nil
}

// GetForLawyer returns a contract only to its assigned lawyer
func (s *ContractService) GetForLawyer(ctx context.Context, p Principal, id string) (*model.Contract, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.LawyerID != p.UserID {
		return nil, unauthorized("Not authorized to access this contract")
	}
	return c, nil
}

func (s *ContractService) ListForClient(ctx context.Context, p Principal) ([]*model.Contract, error) {
	return s.list(ctx, ContractFilter{ClientID: p.UserID})
}

func (s *ContractService) ListPending(ctx context.Context, p Principal) ([]*model.Contract, error) {
	return s.list(ctx, ContractFilter{LawyerID: p.UserID, Status: model.StatusPending})
}

func (s *ContractService) ListSigned(ctx context.Context, p Principal) ([]*model.Contract, error) {
	return s.list(ctx, ContractFilter{LawyerID: p.UserID, Status: model.StatusSigned})
}

// UpdateStatus applies a lawyer's decision. Signing goes through Sign because
// it needs a signature.
func (s *ContractService) UpdateStatus(ctx context.Context, p Principal, id, status, rejectionReason string) (*model.Contract, error) {
	c, err := s.loadForAssignedLawyer(ctx, p, id, "update")
	if err != nil {
		return nil, err
	}

	to, ok := model.ParseStatus(status)
	if !ok {
		return nil, invalid("Invalid status value")
	}
	if to == model.StatusSigned {
		return nil, invalid("Signing requires a signature; use the sign operation")
	}

	from := c.Status
	if err := c.SetStatus(to, strings.TrimSpace(rejectionReason)); err != nil {
		return nil, invalid("%s", err.Error())
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.observe(from, to)
	logger.Info(ctx, "contract status updated", "contract_id", c.ID, "from", from, "to", to)
	return c, nil
}

// Sign records the assigned lawyer's signature and issues the contract
func (s *ContractService) Sign(ctx context.Context, p Principal, id, signature string) (*model.Contract, error) {
	c, err := s.loadForAssignedLawyer(ctx, p, id, "sign")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(signature) == "" {
		return nil, invalid("Signature is required")
	}

	from := c.Status
	if err := c.Sign(signature, s.now()); err != nil {
		return nil, invalid("%s", err.Error())
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.observe(from, model.StatusSigned)
	logger.Info(ctx, "contract signed", "contract_id", c.ID)
	return c, nil
}

// DocumentLocation returns the stored document reference of a signed contract
func (s *ContractService) DocumentLocation(ctx context.Context, p Principal, id string) (string, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}
	if c.Status != model.StatusSigned {
		return "", invalid("Contract document is not available for download")
	}
	if c.DocumentURL == nil {
		return "", notFound("Contract document not found")
	}
	return *c.DocumentURL, nil
}

// AttachDocument stores the generated document reference and expiry date.
// It runs outside any request, so a concurrent write is retried against the
// fresh record.
func (s *ContractService) AttachDocument(ctx context.Context, id, documentURL string, expiry time.Time) error {
	const attempts = 3
	for i := 0; i < attempts; i++ {
		c, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		c.DocumentURL = model.String(documentURL)
		c.ExpiryDate = &expiry

		err = s.store.UpdateContract(ctx, c)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to attach document: %w", err)
		}
		return nil
	}
	return conflict("Contract kept changing while attaching its document")
}

// Detail resolves the type and parties of c. Missing references are left nil.
func (s *ContractService) Detail(ctx context.Context, c *model.Contract) (*ContractDetail, error) {
	detail := &ContractDetail{Contract: c}

	ct, err := s.store.GetContractType(ctx, c.ContractTypeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load contract type: %w", err)
	}
	detail.ContractType = ct

	for _, party := range []struct {
		id  string
		dst **model.Party
	}{
		{c.ClientID, &detail.Client},
		{c.LawyerID, &detail.Lawyer},
	} {
		u, err := s.store.GetUser(ctx, party.id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		*party.dst = u.Party()
	}
	return detail, nil
}

func (s *ContractService) ListTypes(ctx context.Context) ([]*model.ContractType, error) {
	types, err := s.store.ListContractTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract types: %w", err)
	}
	return types, nil
}

func (s *ContractService) GetType(ctx context.Context, id string) (*model.ContractType, error) {
	ct, err := s.store.GetContractType(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Contract type not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contract type: %w", err)
	}
	return ct, nil
}

func (s *ContractService) ListLawyers(ctx context.Context) ([]*model.User, error) {
	lawyers, err := s.store.ListUsersByRole(ctx, model.RoleLawyer)
	if err != nil {
		return nil, fmt.Errorf("failed to list lawyers: %w", err)
	}
	return lawyers, nil
}

func (s *ContractService) load(ctx context.Context, id string) (*model.Contract, error) {
	c, err := s.store.GetContract(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Contract not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	return c, nil
}

func (s *ContractService) loadForAssignedLawyer(ctx context.Context, p Principal, id, action string) (*model.Contract, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != model.RoleLawyer || c.LawyerID != p.UserID {
		return nil, unauthorized("Not authorized to %s this contract", action)
	}
	return c, nil
}

func (s *ContractService) list(ctx context.Context, filter ContractFilter) ([]*model.Contract, error) {
	contracts, err := s.store.ListContracts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (s *ContractService) save(ctx context.Context, c *model.Contract) error {
	err := s.store.UpdateContract(ctx, c)
	if errors.Is(err, ErrConflict) {
		return conflict("Contract was modified by another request; reload and retry")
	}
	if errors.Is(err, ErrNotFound) {
		return notFound("Contract not found")
	}
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

func (s *ContractService) observe(from, to model.Status) {
	if s.observer != nil {
		s.observer.ObserveTransition(from, to)
	}
}
