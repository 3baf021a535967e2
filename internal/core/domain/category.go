package domain

// Category is the optional enrichment attached to a transaction.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
