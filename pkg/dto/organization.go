package dto

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
