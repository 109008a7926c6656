package dto

type PackageResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	IncludedCredits int      `json:"included_credits"`
	CurrentPrice    float64  `json:"current_price"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	OfferLabel      string   `json:"offer_label,omitempty"`
}

type PackagesResponse struct {
	Packages []PackageResponse `json:"packages"`
}
