package domain

// Principal is the verified identity attached to a request after token
// validation. Name may be empty for identity providers that do not carry it.
type Principal struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}
