package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const (
	SLAOnTime SLAState = "on-time"
	SLALate   SLAState = "late"
	SLAToday  SLAState = "today"
)

// DateLayout is the wire format for expense and import dates.
const DateLayout = "2006-01-02"

type (
	Status string

	SLAState string

	// SLA carries the display state of a transaction's approval deadline.
	SLA struct {
		Text   string   `json:"text"`
		State  SLAState `json:"state"`
		Detail string   `json:"detail,omitempty"`
	}

	Collaborator struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		AvatarRef  string `json:"avatar"`
		Department string `json:"department"`
	}

	// Transaction is one recorded expense event. The Collaborator field is a
	// snapshot copied at creation time, not a live reference: later edits to
	// the collaborator registry do not rewrite existing transactions unless a
	// path explicitly re-propagates them (see the store's avatar update).
	Transaction struct {
		ID               string          `json:"id"`
		Date             string          `json:"date"`
		ImportDate       string          `json:"importDate,omitempty"`
		SourceFile       string          `json:"sourceFile,omitempty"`
		Collaborator     Collaborator    `json:"collaborator"`
		CostCenter       string          `json:"costCenter"`
		Category         string          `json:"category"`
		Value            decimal.Decimal `json:"value"`
		Status           Status          `json:"status"`
		PaymentMethod    string          `json:"paymentMethod"`
		Unit             string          `json:"unit"`
		ApprovalTimeDays int             `json:"approvalTimeDays"`
		SLA              SLA             `json:"sla"`
	}
)

var (
	ErrInvalidValue    = errors.New("invalid value")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyID         = errors.New("empty id")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyDepartment = errors.New("empty department")
	ErrEmptyCostCenter = errors.New("empty cost center")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyUnit       = errors.New("empty unit")
	ErrEmptyPayment    = errors.New("empty payment method")
	ErrNoCollaborator  = errors.New("transaction has no collaborator")
)

// ParseValue parses a monetary amount from user input. Anything that does not
// parse as a non-negative decimal is refused rather than coerced to zero.
func ParseValue(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidValue
	}
	if v.IsNegative() {
		return decimal.Zero, ErrInvalidValue
	}
	return v, nil
}

// IsTerminal reports whether the status admits no further transition.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (c Collaborator) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Department) == "" {
		return ErrEmptyDepartment
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if t.ImportDate != "" {
		if _, err := time.Parse(DateLayout, t.ImportDate); err != nil {
			return ErrInvalidDate
		}
	}
	if strings.TrimSpace(t.Collaborator.ID) == "" {
		return ErrNoCollaborator
	}
	if strings.TrimSpace(t.CostCenter) == "" {
		return ErrEmptyCostCenter
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Unit) == "" {
		return ErrEmptyUnit
	}
	if strings.TrimSpace(t.PaymentMethod) == "" {
		return ErrEmptyPayment
	}
	if t.Value.IsNegative() {
		return ErrInvalidValue
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
