package model

// CustomerSite is the identity a ledger accumulates against. SiteAreaName
// may be empty for single-site customers; the pair is still the canonical
// key, so two records with the same customer name but different sites are
// distinct ledgers.
type CustomerSite struct {
	CustomerName string `json:"customer_name"`
	SiteAreaName string `json:"site_area_name"`
}

// Key returns a stable map key for the identity pair.
func (s CustomerSite) Key() string {
	return s.CustomerName + "\x1f" + s.SiteAreaName
}

func (s CustomerSite) Validate() error {
	if s.CustomerName == "" {
		return ValidationError("customer_name is required")
	}
	return nil
}
