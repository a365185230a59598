package contracts

// CreateRequest is the body accepted by POST.
type CreateRequest struct {
	ClientID         int64  `json:"client_id" validate:"required,gt=0"`
	Reference        string `json:"reference" validate:"required,max=64"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	SessionsIncluded int    `json:"sessions_included" validate:"gte=0"`
	Status           string `json:"status" validate:"omitempty,oneof=draft active"`
}

// UpdateRequest carries the fields to change. The owning client is fixed.
type UpdateRequest struct {
	Reference        *string `json:"reference" validate:"omitempty,min=1,max=64"`
	StartDate        *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	SessionsIncluded *int    `json:"sessions_included" validate:"omitempty,gte=0"`
	Status           *string `json:"status" validate:"omitempty,oneof=draft active expired terminated"`
}
