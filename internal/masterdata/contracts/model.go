package contracts

import (
	"time"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

// Contract statuses.
const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusExpired    = "expired"
	StatusTerminated = "terminated"
)

// Contract is a service agreement between the provider and a client.
type Contract struct {
	ID               int64       `json:"id"`
	ClientID         int64       `json:"client_id"`
	Reference        string      `json:"reference"`
	StartDate        shared.Date `json:"start_date"`
	EndDate          shared.Date `json:"end_date"`
	SessionsIncluded int         `json:"sessions_included"`
	Status           string      `json:"status"`
	ExpiryNotifiedAt *time.Time  `json:"expiry_notified_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ExpiryNotice describes an active contract approaching its end date.
type ExpiryNotice struct {
	ContractID   int64
	Reference    string
	EndDate      time.Time
	ClientName   string
	ContactEmail string
}

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	StatusDraft:  {StatusActive, StatusTerminated},
	StatusActive: {StatusExpired, StatusTerminated},
}

// CanTransition reports whether a contract may move from one status to another.
// Keeping the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
