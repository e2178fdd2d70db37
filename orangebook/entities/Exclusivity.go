package entities

// Exclusivity is one row of the Orange Book exclusivity file: a regulatory
// exclusivity grant (NCE, ODE, PED...) attached to an application product.
type Exclusivity struct {
	ApplType        string `json:"applType"`
	ApplNo          string `json:"applNo"`
	ProductNo       string `json:"productNo"`
	ExclusivityCode string `json:"exclusivityCode"`
	ExclusivityDate string `json:"exclusivityDate"`
}
