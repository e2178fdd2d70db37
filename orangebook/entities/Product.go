package entities

// Product is one row of the Orange Book products file: a single strength of an
// approved drug product under an NDA ("N") or ANDA ("A") application.
type Product struct {
	Ingredient        string `json:"ingredient"`
	DosageForm        string `json:"dosageForm"`
	Route             string `json:"route"`
	TradeName         string `json:"tradeName"`
	Applicant         string `json:"applicant"`
	ApplicantFullName string `json:"applicantFullName"`
	Strength          string `json:"strength"`
	ApplType          string `json:"applType"`
	ApplNo            string `json:"applNo"`
	ProductNo         string `json:"productNo"`
	TECode            string `json:"teCode"`
	ApprovalDate      string `json:"approvalDate"`
	RLD               string `json:"rld"`
	RS                string `json:"rs"`
	MarketingType     string `json:"marketingType"`
}

// IsBrand reports whether the product was approved under a full NDA.
func (p Product) IsBrand() bool {
	return p.ApplType == "N"
}

// IsGeneric reports whether the product was approved under an ANDA.
func (p Product) IsGeneric() bool {
	return p.ApplType == "A"
}
