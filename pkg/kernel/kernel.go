package kernel

// ============================================================================
// Typed identifiers shared across domains
// ============================================================================

// UserID identifies a user (volunteer, lead, HR or admin)
type UserID string

func NewUserID(s string) UserID    { return UserID(s) }
func (id UserID) String() string   { return string(id) }
func (id UserID) IsZero() bool     { return id == "" }

// CandidateID identifies a recruitment candidate
type CandidateID string

func NewCandidateID(s string) CandidateID { return CandidateID(s) }
func (id CandidateID) String() string     { return string(id) }
func (id CandidateID) IsZero() bool       { return id == "" }

// EvaluationID identifies a performance evaluation record
type EvaluationID string

func NewEvaluationID(s string) EvaluationID { return EvaluationID(s) }
func (id EvaluationID) String() string      { return string(id) }
func (id EvaluationID) IsZero() bool        { return id == "" }

// ProjectID identifies a volunteer project
type ProjectID string

func NewProjectID(s string) ProjectID { return ProjectID(s) }
func (id ProjectID) String() string   { return string(id) }
func (id ProjectID) IsZero() bool     { return id == "" }
