package feedback_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/feedback"
	"recipe-backend/internal/models"
	"recipe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(v int) *int { return &v }

func seedRecipe(t *testing.T, db *gorm.DB) models.Recipe {
	t.Helper()
	r := models.Recipe{Title: "Beef stew", Status: models.RecipeStatusPublished, CreatedByID: 1}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func TestCreateFeedback(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	fb, err := feedback.CreateFeedback(feedback.FeedbackInput{
		RecipeID:          r.ID,
		PeriodStart:       date(2025, 7, 1),
		PeriodEnd:         date(2025, 7, 31),
		SatisfactionScore: 4,
		EmotionScore:      intp(5),
		Comment:           "Rich and tender",
		CollectionMethod:  "survey",
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, r.ID, fb.RecipeID)
	assert.EqualValues(t, 7, fb.RegisteredByID)
}

func TestCreateFeedbackValidation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	tests := []struct {
		name  string
		input feedback.FeedbackInput
	}{
		{"period start after end", feedback.FeedbackInput{
			RecipeID: r.ID, PeriodStart: date(2025, 8, 1), PeriodEnd: date(2025, 7, 1), SatisfactionScore: 4,
		}},
		{"satisfaction below range", feedback.FeedbackInput{
			RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 0,
		}},
		{"satisfaction above range", feedback.FeedbackInput{
			RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 6,
		}},
		{"emotion out of range", feedback.FeedbackInput{
			RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31),
			SatisfactionScore: 4, EmotionScore: intp(9),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := feedback.CreateFeedback(tt.input, 1)
			var business *apperr.BusinessError
			assert.ErrorAs(t, err, &business)
		})
	}

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := feedback.CreateFeedback(feedback.FeedbackInput{
			RecipeID: 999, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 4,
		}, 1)
		var nf *apperr.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestDeleteFeedbackOwnership(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	fb, err := feedback.CreateFeedback(feedback.FeedbackInput{
		RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 4,
	}, 7)
	require.NoError(t, err)

	// another chef cannot delete it
	err = feedback.DeleteFeedback(fb.ID, 8, models.RoleChef)
	var forbidden *apperr.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// a producer can
	require.NoError(t, feedback.DeleteFeedback(fb.ID, 8, models.RoleProducer))
}

func TestGenerateSummary(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	scores := []struct {
		satisfaction int
		emotion      *int
		comment      string
	}{
		{5, intp(5), "Perfect"},
		{4, intp(4), "Very good"},
		{4, nil, ""},
	}
	for _, s := range scores {
		_, err := feedback.CreateFeedback(feedback.FeedbackInput{
			RecipeID:          r.ID,
			PeriodStart:       date(2025, 7, 1),
			PeriodEnd:         date(2025, 7, 31),
			SatisfactionScore: s.satisfaction,
			EmotionScore:      s.emotion,
			Comment:           s.comment,
		}, 1)
		require.NoError(t, err)
	}

	summary, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	require.NoError(t, err)

	assert.Equal(t, 4.33, summary.AvgSatisfaction)
	require.NotNil(t, summary.AvgEmotion)
	assert.Equal(t, 4.5, *summary.AvgEmotion)
	assert.Equal(t, 3, summary.FeedbackCount)
	assert.Contains(t, summary.MainCommentTrend, "Comments: 2")
	assert.Contains(t, summary.MainCommentTrend, "Perfect")
}

func TestGenerateSummaryEmptyPeriod(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	_, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	var business *apperr.BusinessError
	require.ErrorAs(t, err, &business)
	assert.Contains(t, business.Message, "no feedback data")
}

func TestGenerateSummaryTruncatesComments(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	long := strings.Repeat("x", 150)
	for i := 0; i < 7; i++ {
		_, err := feedback.CreateFeedback(feedback.FeedbackInput{
			RecipeID:          r.ID,
			PeriodStart:       date(2025, 7, 1),
			PeriodEnd:         date(2025, 7, 31),
			SatisfactionScore: 3,
			Comment:           long,
		}, 1)
		require.NoError(t, err)
	}

	summary, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	require.NoError(t, err)

	assert.Contains(t, summary.MainCommentTrend, "Comments: 7")
	// five highlights at most, each cut to 100 chars plus ellipsis
	assert.Equal(t, 5, strings.Count(summary.MainCommentTrend, "- "))
	assert.Contains(t, summary.MainCommentTrend, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, summary.MainCommentTrend, strings.Repeat("x", 101))
}

func TestGenerateSummaryTruncatesMultibyteComments(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	long := strings.Repeat("あ", 140)
	_, err := feedback.CreateFeedback(feedback.FeedbackInput{
		RecipeID:          r.ID,
		PeriodStart:       date(2025, 7, 1),
		PeriodEnd:         date(2025, 7, 31),
		SatisfactionScore: 4,
		Comment:           long,
	}, 1)
	require.NoError(t, err)

	summary, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	require.NoError(t, err)

	// the cut must land on a rune boundary, never inside a multibyte sequence
	assert.True(t, utf8.ValidString(summary.MainCommentTrend))
	assert.Contains(t, summary.MainCommentTrend, strings.Repeat("あ", 100)+"...")
	assert.NotContains(t, summary.MainCommentTrend, strings.Repeat("あ", 101))
}

func TestGenerateSummaryUpserts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	_, err := feedback.CreateFeedback(feedback.FeedbackInput{
		RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 3,
	}, 1)
	require.NoError(t, err)

	first, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	require.NoError(t, err)

	_, err = feedback.CreateFeedback(feedback.FeedbackInput{
		RecipeID: r.ID, PeriodStart: date(2025, 7, 1), PeriodEnd: date(2025, 7, 31), SatisfactionScore: 5,
	}, 1)
	require.NoError(t, err)

	second, err := feedback.GenerateSummary(r.ID, date(2025, 7, 1), date(2025, 7, 31))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4.0, second.AvgSatisfaction)
	assert.Equal(t, 2, second.FeedbackCount)

	var count int64
	require.NoError(t, db.Model(&models.FeedbackSummary{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetSummaryTrend(t *testing.T) {
	db := testutil.OpenTestDB(t)
	r := seedRecipe(t, db)

	months := []time.Month{8, 6, 7}
	for _, m := range months {
		require.NoError(t, db.Create(&models.FeedbackSummary{
			RecipeID:        r.ID,
			PeriodStart:     date(2025, m, 1),
			PeriodEnd:       date(2025, m, 28),
			AvgSatisfaction: 4.0,
			FeedbackCount:   1,
		}).Error)
	}

	trend, err := feedback.GetSummaryTrend(r.ID)
	require.NoError(t, err)
	require.Len(t, trend, 3)
	assert.Equal(t, date(2025, 6, 1), trend[0].PeriodStart)
	assert.Equal(t, date(2025, 7, 1), trend[1].PeriodStart)
	assert.Equal(t, date(2025, 8, 1), trend[2].PeriodStart)
}
