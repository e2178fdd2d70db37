package entities

// Biologic is one row of the Purple Book data download: a licensed biological
// product under a BLA, including biosimilar and interchangeability standing.
//
// Biosimilar and Interchangeable are derived once at parse time so that every
// downstream consumer sees the same classification.
type Biologic struct {
	ApplicantName              string `json:"applicantName"`
	BLANumber                  string `json:"blaNumber"`
	ProperName                 string `json:"properName"`
	ProprietaryName            string `json:"proprietaryName"`
	BLAType                    string `json:"blaType"`
	Strength                   string `json:"strength"`
	DosageForm                 string `json:"dosageForm"`
	Route                      string `json:"route"`
	MarketingStatus            string `json:"marketingStatus"`
	LicensureDate              string `json:"licensureDate"`
	RefProductProperName       string `json:"refProductProperName"`
	RefProductProprietaryName  string `json:"refProductProprietaryName"`
	Biosimilar                 bool   `json:"biosimilar"`
	Interchangeable            bool   `json:"interchangeable"`
	InterchangeableExclusivity string `json:"interchangeableExclusivity"`
	ExclusivityExpiration      string `json:"exclusivityExpiration"`
	OrphanExclusivity          string `json:"orphanExclusivity"`
}
