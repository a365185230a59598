package beneficiaries

import "time"

// Relationship values.
const (
	RelationshipEmployee  = "employee"
	RelationshipDependent = "dependent"
)

// Beneficiary is a person entitled to programme services through a client.
type Beneficiary struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Relationship string    `json:"relationship"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
