package dto

// UpdateSuggestionRequest patches the two flags independently; a nil field is
// not applied. Nothing prevents both ending up true.
type UpdateSuggestionRequest struct {
	Accepted  *bool `json:"accepted,omitempty"`
	Dismissed *bool `json:"dismissed,omitempty"`
}
