package evaluation

import (
	"testing"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/ptrx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPayload(t *testing.T) {
	e := Evaluation{
		ID:                  kernel.NewEvaluationID("e1"),
		Status:              StatusCompleted,
		OverallScore:        ptrx.Float64(4.5),
		CriteriaScores:      map[string]float64{"communication": 4},
		FeedbackText:        ptrx.String("good"),
		Strengths:           []string{"focus"},
		ImprovementAreas:    []string{"pacing"},
		Achievements:        []string{"launch"},
		Challenges:          []string{"scope"},
		GoalsNextPeriod:     ptrx.String("mentoring"),
		RecommendedTraining: ptrx.String("course"),
	}

	require.True(t, e.HasPayload())
	e.StripPayload()
	assert.False(t, e.HasPayload())

	// Non-confidential fields survive.
	assert.Equal(t, StatusCompleted, e.Status)
	assert.Equal(t, kernel.NewEvaluationID("e1"), e.ID)
}

func TestComplete(t *testing.T) {
	now := time.Now()
	e := Evaluation{Status: StatusPending, DueDate: now.Add(time.Hour)}

	payload := Payload{
		OverallScore: ptrx.Float64(4),
		FeedbackText: ptrx.String("solid"),
		Strengths:    []string{"delivery"},
	}
	require.NoError(t, e.Complete(payload, now))

	assert.Equal(t, StatusCompleted, e.Status)
	require.NotNil(t, e.CompletedDate)
	assert.Equal(t, now, *e.CompletedDate)
	require.NotNil(t, e.OverallScore)
	assert.Equal(t, 4.0, *e.OverallScore)

	// Completing twice is a business error.
	err := e.Complete(payload, now.Add(time.Minute))
	assert.Error(t, err)
}

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	due := now.Add(-time.Hour)

	pending := Evaluation{Status: StatusPending, DueDate: due}
	assert.True(t, pending.IsOverdue(now))

	completed := Evaluation{Status: StatusCompleted, DueDate: due}
	assert.False(t, completed.IsOverdue(now), "completed evaluations never go overdue")

	future := Evaluation{Status: StatusPending, DueDate: now.Add(time.Hour)}
	assert.False(t, future.IsOverdue(now))
}
