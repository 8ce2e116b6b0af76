package models

type ViewerRole string

const (
	RoleCustomer ViewerRole = "customer"
	RoleVendor   ViewerRole = "vendor"
	RoleAgent    ViewerRole = "agent"
)

// Viewer is the identity issuing order queries, carrying the eligibility
// flags the admission gate checks for delivery agents.
type Viewer struct {
	ID         string     `json:"id"`
	Role       ViewerRole `json:"role"`
	IsOnline   bool       `json:"is_online"`
	IsVerified bool       `json:"is_verified"`
}
