package staff

// CreateRequest is the body accepted by POST.
type CreateRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Title     string `json:"title" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=40"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateRequest carries the fields to change.
type UpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Title     *string `json:"title" validate:"omitempty,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	Status    *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CreateRequest) toMember() Member {
	return Member{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Title:     r.Title,
		Phone:     r.Phone,
		Status:    r.Status,
	}
}

func (r UpdateRequest) apply(m Member) Member {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.FirstName, r.FirstName)
	set(&m.LastName, r.LastName)
	set(&m.Email, r.Email)
	set(&m.Title, r.Title)
	set(&m.Phone, r.Phone)
	set(&m.Status, r.Status)
	return m
}
