package candidate

import (
	"net/http"
	"strings"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// ============================================================================
// Pipeline Stages
// ============================================================================

// Stage is one column of the recruitment pipeline. The set is ordered,
// exhaustive and mutually exclusive: a candidate occupies exactly one stage.
type Stage string

const (
	StageApplicationReceived  Stage = "Application Received"
	StageHRReview             Stage = "Application Accepted/HR Review"
	StageHRInterviewScheduled Stage = "HR Interview Scheduled"
	StageHRInterviewCompleted Stage = "HR Interview Completed"
	StageAcceptedByHR         Stage = "Accepted by HR"
	StageRejectedByHR         Stage = "Rejected by HR"
	StagePMInterviewScheduled Stage = "PM Interview Scheduled"
	StagePMInterviewCompleted Stage = "PM Interview Completed"
	StageAcceptedByPM         Stage = "Accepted by PM"
	StageRejectedByPM         Stage = "Rejected by PM"
	StageAcceptedByCandidate  Stage = "Accepted by Candidate"
	StageRejectedByCandidate  Stage = "Rejected by Candidate"
	StageOfferSent            Stage = "Offer Sent"
	StageOnboard              Stage = "Onboard"
)

// AllStages returns the pipeline columns in board order
func AllStages() []Stage {
	return []Stage{
		StageApplicationReceived,
		StageHRReview,
		StageHRInterviewScheduled,
		StageHRInterviewCompleted,
		StageAcceptedByHR,
		StageRejectedByHR,
		StagePMInterviewScheduled,
		StagePMInterviewCompleted,
		StageAcceptedByPM,
		StageRejectedByPM,
		StageAcceptedByCandidate,
		StageRejectedByCandidate,
		StageOfferSent,
		StageOnboard,
	}
}

// Valid reports whether s is a member of the stage set
func (s Stage) Valid() bool {
	for _, stage := range AllStages() {
		if s == stage {
			return true
		}
	}
	return false
}

// IsRejection reports whether s is an absorbing rejection state
func (s Stage) IsRejection() bool {
	switch s {
	case StageRejectedByHR, StageRejectedByPM, StageRejectedByCandidate:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the pipeline. Onboard is the sole
// successful terminal state.
func (s Stage) IsTerminal() bool {
	return s.IsRejection() || s == StageOnboard
}

func (s Stage) String() string { return string(s) }

// ParseStage validates a stage label coming from a client
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.TrimSpace(s))
	if !stage.Valid() {
		return "", ErrInvalidStage().WithDetail("stage", s)
	}
	return stage, nil
}

// ============================================================================
// Volunteer Type
// ============================================================================

type VolunteerType string

const (
	VolunteerTypeRegular VolunteerType = "Regular"
	VolunteerTypeCPT     VolunteerType = "CPT"
	VolunteerTypeOPT     VolunteerType = "OPT"
)

// CPTOPTNotRequired is the CPT/OPT status carried by regular volunteers
const CPTOPTNotRequired = "No Required"

func (v VolunteerType) Valid() bool {
	switch v {
	case VolunteerTypeRegular, VolunteerTypeCPT, VolunteerTypeOPT:
		return true
	}
	return false
}

// ============================================================================
// Documents
// ============================================================================

// DocumentKind names one of the onboarding documents tracked per candidate
type DocumentKind string

const (
	DocumentOfferLetter        DocumentKind = "offer_letter"
	DocumentVolunteerAgreement DocumentKind = "volunteer_agreement"
	DocumentWelcomeLetter      DocumentKind = "welcome_letter"
)

func (d DocumentKind) Valid() bool {
	switch d {
	case DocumentOfferLetter, DocumentVolunteerAgreement, DocumentWelcomeLetter:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusSent    DocumentStatus = "sent"
	DocumentStatusSigned  DocumentStatus = "signed"
)

// DocumentState tracks the status and storage link of one document
type DocumentState struct {
	Status DocumentStatus `db:"status" json:"status"`
	Link   *string        `db:"link" json:"link,omitempty"`
}

// ============================================================================
// Candidate Entity
// ============================================================================

// Candidate is a recruitment pipeline entry
type Candidate struct {
	ID           kernel.CandidateID `db:"id" json:"id"`
	Name         string             `db:"name" json:"name"`
	Email        string             `db:"email" json:"email"`
	Phone        *string            `db:"phone" json:"phone,omitempty"`
	AppliedRole  string             `db:"applied_role" json:"applied_role"`
	Team         string             `db:"team" json:"team"`

	ApplicationStatus Stage         `db:"application_status" json:"application_status"`
	VolunteerType     VolunteerType `db:"volunteer_type" json:"volunteer_type"`
	CPTOPTStatus      string        `db:"cpt_opt_status" json:"cpt_opt_status"`

	HRInterviewDate *time.Time `db:"hr_interview_date" json:"hr_interview_date,omitempty"`
	PMInterviewDate *time.Time `db:"pm_interview_date" json:"pm_interview_date,omitempty"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`

	OfferLetter        DocumentState `json:"offer_letter"`
	VolunteerAgreement DocumentState `json:"volunteer_agreement"`
	WelcomeLetter      DocumentState `json:"welcome_letter"`

	Notes string   `db:"notes" json:"notes"`
	ToDo  []string `json:"to_do"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Document returns a pointer to the state for the given kind
func (c *Candidate) Document(kind DocumentKind) *DocumentState {
	switch kind {
	case DocumentOfferLetter:
		return &c.OfferLetter
	case DocumentVolunteerAgreement:
		return &c.VolunteerAgreement
	case DocumentWelcomeLetter:
		return &c.WelcomeLetter
	}
	return nil
}

// NormalizeCPTOPT enforces the volunteer-type invariant: regular volunteers
// always carry "No Required"
func (c *Candidate) NormalizeCPTOPT() {
	if c.VolunteerType == VolunteerTypeRegular {
		c.CPTOPTStatus = CPTOPTNotRequired
	} else if c.CPTOPTStatus == "" || c.CPTOPTStatus == CPTOPTNotRequired {
		c.CPTOPTStatus = "Pending"
	}
}

// RebuildToDo derives the pending-action list from the current stage and
// document states
func (c *Candidate) RebuildToDo() {
	todo := []string{}

	switch c.ApplicationStatus {
	case StageApplicationReceived:
		todo = append(todo, "Review application")
	case StageHRReview:
		todo = append(todo, "Schedule HR interview")
	case StageHRInterviewScheduled:
		todo = append(todo, "Conduct HR interview")
	case StageHRInterviewCompleted:
		todo = append(todo, "Record HR decision")
	case StageAcceptedByHR:
		todo = append(todo, "Schedule PM interview")
	case StagePMInterviewScheduled:
		todo = append(todo, "Conduct PM interview")
	case StagePMInterviewCompleted:
		todo = append(todo, "Record PM decision")
	case StageAcceptedByPM:
		todo = append(todo, "Await candidate decision")
	case StageAcceptedByCandidate:
		todo = append(todo, "Send offer letter")
	case StageOfferSent:
		if c.OfferLetter.Status != DocumentStatusSigned {
			todo = append(todo, "Collect signed offer letter")
		}
		if c.VolunteerAgreement.Status != DocumentStatusSigned {
			todo = append(todo, "Collect signed volunteer agreement")
		}
	case StageOnboard:
		if c.WelcomeLetter.Status == DocumentStatusPending {
			todo = append(todo, "Send welcome letter")
		}
		if c.VolunteerType != VolunteerTypeRegular && c.CPTOPTStatus == "Pending" {
			todo = append(todo, "Verify CPT/OPT paperwork")
		}
	}

	c.ToDo = todo
}

// Touch refreshes the update timestamp
func (c *Candidate) Touch() {
	c.UpdatedAt = time.Now()
}

// ============================================================================
// Service DTOs
// ============================================================================

// CreateCandidateRequest carries the fields HR provides when registering an
// application
type CreateCandidateRequest struct {
	Name          string  `json:"name" validate:"required,min=2"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         *string `json:"phone,omitempty"`
	AppliedRole   string  `json:"applied_role" validate:"required"`
	Team          string  `json:"team" validate:"required"`
	VolunteerType string  `json:"volunteer_type" validate:"required"`
	Notes         string  `json:"notes,omitempty"`
}

// UpdateFieldRequest mutates one whitelisted candidate field
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

// MoveRequest is a drag-initiated stage transition
type MoveRequest struct {
	FromStage   string `json:"from_stage" validate:"required"`
	ToStage     string `json:"to_stage" validate:"required"`
	TargetIndex int    `json:"target_index"`
}

// CandidateListResponse for board and list endpoints
type CandidateListResponse struct {
	Candidates []Candidate `json:"candidates"`
	Total      int         `json:"total"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("CANDIDATE")

var (
	CodeCandidateNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Candidate not found")
	CodeCandidateAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "A candidate with this email already exists")
	CodeInvalidStage           = ErrRegistry.Register("INVALID_STAGE", errx.TypeValidation, http.StatusBadRequest, "Stage is not a member of the pipeline")
	CodeInvalidVolunteerType   = ErrRegistry.Register("INVALID_VOLUNTEER_TYPE", errx.TypeValidation, http.StatusBadRequest, "Volunteer type must be Regular, CPT or OPT")
	CodeInvalidField           = ErrRegistry.Register("INVALID_FIELD", errx.TypeValidation, http.StatusBadRequest, "Field is not editable")
	CodeInvalidDocumentKind    = ErrRegistry.Register("INVALID_DOCUMENT_KIND", errx.TypeValidation, http.StatusBadRequest, "Unknown document kind")
)

func ErrCandidateNotFound() *errx.Error {
	return ErrRegistry.New(CodeCandidateNotFound)
}

func ErrCandidateAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeCandidateAlreadyExists)
}

func ErrInvalidStage() *errx.Error {
	return ErrRegistry.New(CodeInvalidStage)
}

func ErrInvalidVolunteerType() *errx.Error {
	return ErrRegistry.New(CodeInvalidVolunteerType)
}

func ErrInvalidField() *errx.Error {
	return ErrRegistry.New(CodeInvalidField)
}

func ErrInvalidDocumentKind() *errx.Error {
	return ErrRegistry.New(CodeInvalidDocumentKind)
}
