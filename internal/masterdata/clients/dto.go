package clients

// CreateRequest is the body accepted by POST.
type CreateRequest struct {
	Code         string `json:"code" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=200"`
	IndustryID   *int64 `json:"industry_id" validate:"omitempty,gt=0"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"max=40"`
	Address      string `json:"address" validate:"max=500"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateRequest carries the fields to change. Absent fields keep their value.
type UpdateRequest struct {
	Code         *string `json:"code" validate:"omitempty,min=1,max=32"`
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	IndustryID   *int64  `json:"industry_id" validate:"omitempty,gte=0"`
	ContactEmail *string `json:"contact_email" validate:"omitempty"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=40"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CreateRequest) toClient() Client {
	return Client{
		Code:         r.Code,
		Name:         r.Name,
		IndustryID:   r.IndustryID,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Address:      r.Address,
		Status:       r.Status,
	}
}

// apply overlays the request on c. An industry_id of 0 clears the industry.
func (r UpdateRequest) apply(c Client) Client {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.IndustryID != nil {
		if *r.IndustryID == 0 {
			c.IndustryID = nil
		} else {
			id := *r.IndustryID
			c.IndustryID = &id
		}
	}
	if r.ContactEmail != nil {
		c.ContactEmail = *r.ContactEmail
	}
	if r.ContactPhone != nil {
		c.ContactPhone = *r.ContactPhone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	return c
}
