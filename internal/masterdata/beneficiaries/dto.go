package beneficiaries

// CreateRequest is the body accepted by POST.
type CreateRequest struct {
	ClientID     int64  `json:"client_id" validate:"required,gt=0"`
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Relationship string `json:"relationship" validate:"omitempty,oneof=employee dependent"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateRequest carries the fields to change. The owning client is fixed.
type UpdateRequest struct {
	FirstName    *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email        *string `json:"email"`
	Relationship *string `json:"relationship" validate:"omitempty,oneof=employee dependent"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CreateRequest) toBeneficiary() Beneficiary {
	return Beneficiary{
		ClientID:     r.ClientID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Relationship: r.Relationship,
		Status:       r.Status,
	}
}

func (r UpdateRequest) apply(b Beneficiary) Beneficiary {
	if r.FirstName != nil {
		b.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		b.LastName = *r.LastName
	}
	if r.Email != nil {
		b.Email = *r.Email
	}
	if r.Relationship != nil {
		b.Relationship = *r.Relationship
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
	return b
}
