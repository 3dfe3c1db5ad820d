package model

// Role is the relationship the document subject holds
type Role string

const (
	RoleContractor Role = "contractor"
	RoleEmployee   Role = "employee"
	RoleStudent    Role = "student"
	RoleSupplier   Role = "supplier"
	RoleDirector   Role = "director"
	RoleClient     Role = "client"
	RolePartner    Role = "partner"
	RoleUnknown    Role = "unknown"
)

// Roles lists inferable roles in tie-break order
var Roles = []Role{
	RoleContractor,
	RoleEmployee,
	RoleStudent,
	RoleSupplier,
	RoleDirector,
	RoleClient,
	RolePartner,
}

// EvidenceType grades how strongly something was demonstrated
type EvidenceType string

const (
	EvidenceHard EvidenceType = "hard" // Explicit statement
	EvidenceSoft EvidenceType = "soft" // Circumstantial wording
	EvidenceNone EvidenceType = "none"
)

// RoleResult is the output of role inference
type RoleResult struct {
	Role         Role         `json:"role"`
	Confidence   float64      `json:"confidence"`
	EvidenceType EvidenceType `json:"evidence_type"`
	Signals      []string     `json:"signals,omitempty"` // Patterns that matched for the winning role
	HardCount    int          `json:"hard_count"`
	SoftCount    int          `json:"soft_count"`
}

// UnknownRole is the result when nothing matched
func UnknownRole() RoleResult {
	return RoleResult{Role: RoleUnknown, EvidenceType: EvidenceNone}
}
