package billing

// Package is a purchasable credit bundle. Owned and mutated only by the
// upstream platform; this service treats it as read-only and never trusts an
// inactive entry as purchasable.
type Package struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	IncludedCredits int      `json:"included_credits"`
	CurrentPrice    float64  `json:"current_price"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	OfferLabel      string   `json:"offer_label,omitempty"`
	IsActive        bool     `json:"is_active"`
	SortOrder       int      `json:"sort_order"`
}
