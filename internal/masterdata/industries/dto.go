package industries

// IndustryRequest is the body accepted by create and update.
type IndustryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
