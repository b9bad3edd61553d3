package domain

// Actor is the authenticated user performing a request, resolved from the
// bearer credential. A nil actor means the request hit a public resource.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
