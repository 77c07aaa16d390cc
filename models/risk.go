package models

// RiskDimension is one axis of the contract risk radar chart.
type RiskDimension struct {
	Subject  string `json:"subject"`
	Score    int    `json:"score"`
	FullMark int    `json:"full_mark"`
}

// RiskScore is the structured result of risk_score mode. On unrecoverable
// parse failure the sanitizer substitutes TotalScore 0 with empty Dimensions.
type RiskScore struct {
	TotalScore int             `json:"total_score"`
	Summary    string          `json:"summary"`
	Dimensions []RiskDimension `json:"dimensions"`
}
