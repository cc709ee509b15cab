package model

import "time"

// Contract is an agreement between one client and one lawyer
type Contract struct {
	ID              string         `json:"id"`
	ContractTypeID  string         `json:"contractType"`
	ClientID        string         `json:"client"`
	LawyerID        string         `json:"lawyer"`
	ContractData    map[string]any `json:"contractData"`
	Signature       *string        `json:"signature"`
	Status          Status         `json:"status"`
	DocumentURL     *string        `json:"documentUrl"`
	ClientSigned    bool           `json:"clientSigned"`
	LawyerSigned    bool           `json:"lawyerSigned"`
	IssueDate       *time.Time     `json:"issueDate"`
	ExpiryDate      *time.Time     `json:"expiryDate"`
	RejectionReason *string        `json:"rejectionReason"`
	Version         int64          `json:"version"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// IsParty reports whether userID is the client or the lawyer of the contract.
func (c *Contract) IsParty(userID string) bool {
	return userID != "" && (c.ClientID == userID || c.LawyerID == userID)
}

// SetStatus moves the contract to status. A reason is only kept for rejections
// and is cleared whenever the contract leaves the rejected state.
func (c *Contract) SetStatus(to Status, reason string) error {
	if !CanTransition(c.Status, to) {
		return &TransitionError{From: c.Status, To: to}
	}
	if c.Status == StatusRejected && to != StatusRejected {
		c.RejectionReason = nil
	}
	c.Status = to
	if to == StatusRejected && reason != "" {
		c.RejectionReason = String(reason)
	}
	return nil
}

// Sign records the lawyer's signature and issues the contract.
func (c *Contract) Sign(signature string, now time.Time) error {
	if err := c.SetStatus(StatusSigned, ""); err != nil {
		return err
	}
	issued := now
	c.LawyerSigned = true
	c.Signature = String(signature)
	c.IssueDate = &issued
	return nil
}

// Clone returns a deep copy that shares no mutable state with c. Nested
// contract data is copied as far as JSON objects and arrays go.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.ContractData = cloneObject(c.ContractData)
	out.Signature = copyString(c.Signature)
	out.DocumentURL = copyString(c.DocumentURL)
	out.RejectionReason = copyString(c.RejectionReason)
	out.IssueDate = copyTime(c.IssueDate)
	out.ExpiryDate = copyTime(c.ExpiryDate)
	return &out
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneObject(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Deref returns the value of p or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
