package entities

// Patent is one row of the Orange Book patent file. Expiration dates are kept
// as the source text; analytical queries parse them on demand.
type Patent struct {
	ApplType          string `json:"applType"`
	ApplNo            string `json:"applNo"`
	ProductNo         string `json:"productNo"`
	PatentNo          string `json:"patentNo"`
	PatentExpireDate  string `json:"patentExpireDate"`
	DrugSubstanceFlag string `json:"drugSubstanceFlag"`
	DrugProductFlag   string `json:"drugProductFlag"`
	PatentUseCode     string `json:"patentUseCode"`
	DelistFlag        string `json:"delistFlag"`
	SubmissionDate    string `json:"submissionDate"`
}
