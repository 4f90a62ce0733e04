package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	stage, err := ParseStage("  Application Accepted/HR Review ")
	require.NoError(t, err)
	assert.Equal(t, StageHRReview, stage)

	_, err = ParseStage("Reviewing")
	assert.Error(t, err)

	_, err = ParseStage("")
	assert.Error(t, err)
}

func TestStage_Classification(t *testing.T) {
	assert.True(t, StageRejectedByHR.IsRejection())
	assert.True(t, StageRejectedByPM.IsRejection())
	assert.True(t, StageRejectedByCandidate.IsRejection())
	assert.False(t, StageOnboard.IsRejection())

	assert.True(t, StageOnboard.IsTerminal())
	assert.True(t, StageRejectedByCandidate.IsTerminal())
	assert.False(t, StageOfferSent.IsTerminal())

	assert.Len(t, AllStages(), 14)
	for _, s := range AllStages() {
		assert.True(t, s.Valid(), s)
	}
}

func TestNormalizeCPTOPT(t *testing.T) {
	regular := Candidate{VolunteerType: VolunteerTypeRegular, CPTOPTStatus: "Approved"}
	regular.NormalizeCPTOPT()
	assert.Equal(t, CPTOPTNotRequired, regular.CPTOPTStatus)

	cpt := Candidate{VolunteerType: VolunteerTypeCPT}
	cpt.NormalizeCPTOPT()
	assert.Equal(t, "Pending", cpt.CPTOPTStatus)

	// Switching a regular candidate to OPT resets the stale "No Required".
	opt := Candidate{VolunteerType: VolunteerTypeOPT, CPTOPTStatus: CPTOPTNotRequired}
	opt.NormalizeCPTOPT()
	assert.Equal(t, "Pending", opt.CPTOPTStatus)

	// An explicit CPT/OPT status survives normalization.
	approved := Candidate{VolunteerType: VolunteerTypeOPT, CPTOPTStatus: "Approved"}
	approved.NormalizeCPTOPT()
	assert.Equal(t, "Approved", approved.CPTOPTStatus)
}

func TestRebuildToDo(t *testing.T) {
	c := Candidate{ApplicationStatus: StageApplicationReceived}
	c.RebuildToDo()
	assert.Equal(t, []string{"Review application"}, c.ToDo)

	c.ApplicationStatus = StageOfferSent
	c.OfferLetter = DocumentState{Status: DocumentStatusSigned}
	c.VolunteerAgreement = DocumentState{Status: DocumentStatusSent}
	c.RebuildToDo()
	assert.Equal(t, []string{"Collect signed volunteer agreement"}, c.ToDo)

	c.VolunteerAgreement.Status = DocumentStatusSigned
	c.RebuildToDo()
	assert.Empty(t, c.ToDo)

	c.ApplicationStatus = StageOnboard
	c.WelcomeLetter = DocumentState{Status: DocumentStatusPending}
	c.VolunteerType = VolunteerTypeCPT
	c.CPTOPTStatus = "Pending"
	c.RebuildToDo()
	assert.Equal(t, []string{"Send welcome letter", "Verify CPT/OPT paperwork"}, c.ToDo)

	c.ApplicationStatus = StageRejectedByHR
	c.RebuildToDo()
	assert.Empty(t, c.ToDo, "terminal stages carry no pending actions")
}

func TestDocument(t *testing.T) {
	c := Candidate{}
	require.NotNil(t, c.Document(DocumentOfferLetter))
	require.NotNil(t, c.Document(DocumentVolunteerAgreement))
	require.NotNil(t, c.Document(DocumentWelcomeLetter))
	assert.Nil(t, c.Document(DocumentKind("passport")))

	c.Document(DocumentOfferLetter).Status = DocumentStatusSigned
	assert.Equal(t, DocumentStatusSigned, c.OfferLetter.Status)
}
