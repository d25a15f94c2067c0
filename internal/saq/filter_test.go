package saq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

func requirementQuestion(id string, order int) models.Question {
	return models.Question{
		QuestionnaireType: models.QuestionnaireTypeSAQA,
		QuestionID:        id,
		Kind:              models.QuestionKindRequirement,
		Order:             order,
		Section:           2,
	}
}

func appendixQuestion(id, number string) models.Question {
	return models.Question{
		QuestionnaireType: models.QuestionnaireTypeSAQA,
		QuestionID:        id,
		Kind:              models.QuestionKindAppendix,
		Number:            number,
	}
}

func TestStaticallyExcluded(t *testing.T) {
	tests := []struct {
		name     string
		q        models.Question
		expected bool
	}{
		{"plain requirement kept", requirementQuestion("q1", 1), false},
		{"legacy prefix excluded", requirementQuestion("legacy_q1", 1), true},
		{"dup prefix excluded", requirementQuestion("dup_q1", 1), true},
		{"summary kind excluded", models.Question{QuestionID: "s1", Kind: models.QuestionKindSummary}, true},
		{"appendix B inline card excluded", appendixQuestion("b1", "B.1"), true},
		{"appendix C inline card excluded", appendixQuestion("c1", "C.1"), true},
		{"appendix D inline card excluded", appendixQuestion("d1", "D.1"), true},
		{"appendix A stays standalone", appendixQuestion("a1", "A.1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StaticallyExcluded(tt.q))
		})
	}
}

func TestFilter_FilterType(t *testing.T) {
	gated := requirementQuestion("gated", 4)
	gated.DependsOn = &models.DependsOn{QuestionID: "gate", Equals: "yes"}

	bank := QuestionBank{
		models.QuestionnaireTypeSAQA: {
			requirementQuestion("gate", 1),
			requirementQuestion("legacy_old", 2),
			{QuestionID: "summary", Kind: models.QuestionKindSummary, Order: 3},
			gated,
			appendixQuestion("b1", "B.1"),
			requirementQuestion("last", 6),
		},
	}
	f := NewFilter(bank)

	// No answers: static exclusions plus the unsatisfied dependency
	visible := f.FilterType(models.QuestionnaireTypeSAQA, nil)
	require.Len(t, visible, 2)
	assert.Equal(t, "gate", visible[0].QuestionID)
	assert.Equal(t, "last", visible[1].QuestionID)

	// Satisfying the gate reveals the dependent question, order preserved
	visible = f.FilterType(models.QuestionnaireTypeSAQA, map[string]*models.Response{
		"gate": answered("gate", "yes"),
	})
	require.Len(t, visible, 3)
	assert.Equal(t, []string{"gate", "gated", "last"},
		[]string{visible[0].QuestionID, visible[1].QuestionID, visible[2].QuestionID})
}

func TestFilter_FilterType_UnknownType(t *testing.T) {
	f := NewFilter(QuestionBank{})
	visible := f.FilterType(models.QuestionnaireTypeSAQD, nil)
	assert.Empty(t, visible)
}

func TestFilter_FilterAll(t *testing.T) {
	bank := QuestionBank{
		models.QuestionnaireTypeSAQA: {requirementQuestion("a1", 1)},
		models.QuestionnaireTypeSAQB: {requirementQuestion("b1", 1), requirementQuestion("legacy_b2", 2)},
	}
	f := NewFilter(bank)

	out := f.FilterAll(ResponseSet{})
	require.Len(t, out, 2)
	assert.Len(t, out[models.QuestionnaireTypeSAQA], 1)
	assert.Len(t, out[models.QuestionnaireTypeSAQB], 1)
}

func TestFilter_AppendixQuestions(t *testing.T) {
	bank := QuestionBank{
		models.QuestionnaireTypeSAQA: {
			appendixQuestion("b0", "B.0"),
			appendixQuestion("b1", "B.1"),
			appendixQuestion("c1", "C.1"),
			requirementQuestion("q1", 1),
		},
	}
	f := NewFilter(bank)

	b := f.AppendixQuestions(models.QuestionnaireTypeSAQA, "B")
	require.Len(t, b, 2)
	assert.Equal(t, "b0", b[0].QuestionID)
	assert.Equal(t, "b1", b[1].QuestionID)

	assert.Len(t, f.AppendixQuestions(models.QuestionnaireTypeSAQA, "C"), 1)
	assert.Empty(t, f.AppendixQuestions(models.QuestionnaireTypeSAQA, "D"))
}
