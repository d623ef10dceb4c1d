package service

import (
	"context"
	"testing"

	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQuestionBankTest(t *testing.T) *QuestionBank {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewQuestionBank(repository.NewReferenceRepository(testDB))
}

func TestQuestionBank_ActiveQuestions(t *testing.T) {
	qb := setupQuestionBankTest(t)

	questions, err := qb.ActiveQuestions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, questions)

	codes := make(map[string]bool, len(questions))
	for _, q := range questions {
		assert.True(t, q.Active)
		codes[q.Code] = true
	}
	assert.True(t, codes["allergen_menu"])
	assert.True(t, codes["dedicated_fryer"])
	assert.True(t, codes["staff_trained"])
}

func TestQuestionBank_ValidateAnswers(t *testing.T) {
	qb := setupQuestionBankTest(t)
	yes := true
	no := false

	answers, err := qb.ValidateAnswers(context.Background(), map[string]*bool{
		"allergen_menu":   &yes,
		"dedicated_fryer": &no,
	})
	require.NoError(t, err)
	require.Len(t, answers, 2)

	byCode := make(map[string]bool, len(answers))
	for _, a := range answers {
		require.NotNil(t, a.Value)
		byCode[a.QuestionCode] = *a.Value
		assert.Equal(t, 1, a.QuestionVersion)
	}
	assert.True(t, byCode["allergen_menu"])
	assert.False(t, byCode["dedicated_fryer"])
}

func TestQuestionBank_ValidateAnswers_AliasTranslation(t *testing.T) {
	qb := setupQuestionBankTest(t)
	yes := true

	// legacy client codes must resolve to the stored question codes
	answers, err := qb.ValidateAnswers(context.Background(), map[string]*bool{
		"allergy_menu":    &yes,
		"separate_fryer":  &yes,
		"staff_knowledge": &yes,
	})
	require.NoError(t, err)
	require.Len(t, answers, 3)

	codes := make(map[string]bool, len(answers))
	for _, a := range answers {
		codes[a.QuestionCode] = true
	}
	assert.True(t, codes["allergen_menu"])
	assert.True(t, codes["dedicated_fryer"])
	assert.True(t, codes["staff_trained"])
}

func TestQuestionBank_ValidateAnswers_UnknownCodeDropped(t *testing.T) {
	qb := setupQuestionBankTest(t)
	yes := true

	answers, err := qb.ValidateAnswers(context.Background(), map[string]*bool{
		"allergen_menu": &yes,
		"bogus_code":    &yes,
	})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "allergen_menu", answers[0].QuestionCode)
}

func TestQuestionBank_ValidateAnswers_NilValueDropped(t *testing.T) {
	qb := setupQuestionBankTest(t)
	yes := true

	// nil means "not answered", never a stored answer
	answers, err := qb.ValidateAnswers(context.Background(), map[string]*bool{
		"allergen_menu":   nil,
		"dedicated_fryer": &yes,
	})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "dedicated_fryer", answers[0].QuestionCode)
}

func TestQuestionBank_ValidateAnswers_Empty(t *testing.T) {
	qb := setupQuestionBankTest(t)

	answers, err := qb.ValidateAnswers(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, answers)
}
