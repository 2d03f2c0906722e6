package clarify

import (
	"testing"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions() []entity.ClarificationQuestion {
	return []entity.ClarificationQuestion{
		{Question: "Kapan kontrak ditandatangani?", Type: entity.AnswerTypeDate, Required: true},
		{Question: "Apakah ada perjanjian tertulis?", Type: entity.AnswerTypeYesNo, Required: true},
		{Question: "Jenis kontrak?", Type: entity.AnswerTypeMultipleChoice, Choices: []string{"PKWT", "PKWTT"}, Required: true},
		{Question: "Berapa nilai kontrak?", Type: entity.AnswerTypeNumber, Required: false},
		{Question: "Catatan tambahan", Type: entity.AnswerType("rich_text"), Required: false},
	}
}

func TestSubmitFlagsOnlyUnmetRequiredQuestions(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	require.NoError(t, c.SetAnswer("Kapan kontrak ditandatangani?", "2026-01-15"))

	answers, fields := c.Submit()
	assert.Nil(t, answers)
	require.Len(t, fields, 2)
	assert.Equal(t, "Apakah ada perjanjian tertulis?", fields[0].Question)
	assert.Equal(t, "Jenis kontrak?", fields[1].Question)

	// Questions stay pending so the user can fix exactly the flagged ones.
	assert.True(t, c.HasPending())
}

func TestFieldErrorClearsOnNewValue(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	_, fields := c.Submit()
	require.Len(t, fields, 3)

	require.NoError(t, c.SetAnswer("Apakah ada perjanjian tertulis?", AnswerYes))

	remaining := c.FieldErrors()
	require.Len(t, remaining, 2)
	for _, fe := range remaining {
		assert.NotEqual(t, "Apakah ada perjanjian tertulis?", fe.Question)
	}
}

func TestSubmitReportsTypedAndMissingErrorsTogether(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	err := c.SetAnswer("Kapan kontrak ditandatangani?", "besok")
	require.ErrorIs(t, err, entity.ErrInvalidAnswer)

	_, fields := c.Submit()
	require.Len(t, fields, 3)
	// The typed error is kept, not replaced by the generic required message.
	assert.Equal(t, "Kapan kontrak ditandatangani?", fields[0].Question)
	assert.Contains(t, fields[0].Error, "must be a date")
}

func TestClearingAnswerRemovesStaleValidationError(t *testing.T) {
	c := NewCollector()
	c.SetQuestions([]entity.ClarificationQuestion{
		{Question: "Berapa gaji Anda?", Type: entity.AnswerTypeNumber, Required: false},
		{Question: "Apa posisi Anda?", Type: entity.AnswerTypeText, Required: true},
	})

	err := c.SetAnswer("Berapa gaji Anda?", "abc")
	require.ErrorIs(t, err, entity.ErrInvalidAnswer)

	// Clearing the optional question discards the flagged error too, so a
	// skipped question cannot block submission.
	require.NoError(t, c.SetAnswer("Berapa gaji Anda?", ""))
	require.NoError(t, c.SetAnswer("Apa posisi Anda?", "Staf"))

	answers, fields := c.Submit()
	require.Empty(t, fields)
	assert.Equal(t, "Staf", answers["Apa posisi Anda?"])
	assert.NotContains(t, answers, "Berapa gaji Anda?")
	assert.False(t, c.HasPending())
}

func TestTypedValidation(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	tests := []struct {
		question string
		value    string
		wantErr  error
	}{
		{"Kapan kontrak ditandatangani?", "15-01-2026", entity.ErrInvalidAnswer},
		{"Kapan kontrak ditandatangani?", "2026-01-15", nil},
		{"Apakah ada perjanjian tertulis?", "mungkin", entity.ErrInvalidAnswer},
		{"Apakah ada perjanjian tertulis?", AnswerNo, nil},
		{"Jenis kontrak?", "freelance", entity.ErrInvalidAnswer},
		{"Jenis kontrak?", "PKWT", nil},
		{"Berapa nilai kontrak?", "lima juta", entity.ErrInvalidAnswer},
		{"Berapa nilai kontrak?", "5000000", nil},
		// unrecognized answer types fall back to free text
		{"Catatan tambahan", "apa saja", nil},
	}

	for _, tt := range tests {
		err := c.SetAnswer(tt.question, tt.value)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "%s = %q", tt.question, tt.value)
		} else {
			assert.NoError(t, err, "%s = %q", tt.question, tt.value)
		}
	}
}

func TestSubmitReturnsAnswerPerAnsweredQuestionAndClearsPending(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	require.NoError(t, c.SetAnswer("Kapan kontrak ditandatangani?", "2026-01-15"))
	require.NoError(t, c.SetAnswer("Apakah ada perjanjian tertulis?", AnswerYes))
	require.NoError(t, c.SetAnswer("Jenis kontrak?", "PKWTT"))
	require.NoError(t, c.SetAnswer("Berapa nilai kontrak?", "7500000"))

	answers, fields := c.Submit()
	require.Nil(t, fields)
	require.Len(t, answers, 4)
	assert.Equal(t, "2026-01-15", answers["Kapan kontrak ditandatangani?"])
	assert.Equal(t, AnswerYes, answers["Apakah ada perjanjian tertulis?"])
	assert.Equal(t, "PKWTT", answers["Jenis kontrak?"])
	assert.Equal(t, "7500000", answers["Berapa nilai kontrak?"])

	assert.False(t, c.HasPending())
}

func TestAnswerForUnknownQuestionIsRejected(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())

	err := c.SetAnswer("Siapa nama anda?", "Budi")
	assert.ErrorIs(t, err, entity.ErrUnknownQuestion)
}

func TestSetQuestionsReplacesWholesale(t *testing.T) {
	c := NewCollector()
	c.SetQuestions(questions())
	require.NoError(t, c.SetAnswer("Jenis kontrak?", "PKWT"))

	c.SetQuestions([]entity.ClarificationQuestion{
		{Question: "Pertanyaan baru?", Type: entity.AnswerTypeText, Required: true},
	})

	require.Len(t, c.Questions(), 1)
	_, fields := c.Submit()
	require.Len(t, fields, 1)
	assert.Equal(t, "Pertanyaan baru?", fields[0].Question)
}
