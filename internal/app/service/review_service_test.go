package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (ReviewService, *gorm.DB, *model.User, *model.Establishment) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	reviewRepo := repository.NewReviewRepository(testDB)
	estRepo := repository.NewEstablishmentRepository(testDB)
	refRepo := repository.NewReferenceRepository(testDB)
	questionBank := NewQuestionBank(refRepo)
	reviewService := NewReviewService(reviewRepo, estRepo, refRepo, questionBank, testDB)

	user := &model.User{
		Email:        "reviewer@example.com",
		PasswordHash: "hash",
		DisplayName:  "Test Reviewer",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	placeID := "place-abc-123"
	establishment := &model.Establishment{
		Name:    "The Safe Fork",
		Address: "1 High Street",
		City:    "Dublin",
		PlaceID: &placeID,
	}
	testDB.Create(establishment)

	return reviewService, testDB, user, establishment
}

func createSecondUser(t *testing.T, testDB *gorm.DB) *model.User {
	user := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		DisplayName:  "Other User",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	rating := 4
	yes := true
	no := false
	visitDate := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Rating:          &rating,
		Comment:         "Separate prep area, staff knew their stuff",
		VisitDate:       &visitDate,
		PhotoURLs:       []string{"https://cdn.example.com/1.jpg"},
		AllergenScores:  map[string]int{"gluten": 5, "tree_nuts": 4},
		YesNoAnswers:    map[string]*bool{"allergen_menu": &yes, "separate_fryer": &no, "bogus_code": &yes},
	})
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.NotZero(t, view.ID)
	assert.Equal(t, user.ID, view.UserID)
	assert.Equal(t, "Test Reviewer", view.UserDisplayName)
	assert.Equal(t, establishment.ID, view.EstablishmentID)
	assert.Equal(t, "The Safe Fork", view.EstablishmentName)
	assert.Equal(t, 4, *view.Rating)
	assert.Equal(t, model.ReviewStatusPublished, view.Status)

	// scores come back in the client vocabulary: nuts is stored, tree_nuts
	// is served
	assert.Equal(t, 5, view.AllergenScores["gluten"])
	assert.Equal(t, 4, view.AllergenScores["tree_nuts"])
	assert.NotContains(t, view.AllergenScores, "nuts")

	// legacy answer codes resolve to canonical questions and back; codes
	// outside the active question bank are dropped without error
	assert.True(t, view.YesNoAnswers["allergy_menu"])
	assert.False(t, view.YesNoAnswers["separate_fryer"])
	assert.NotContains(t, view.YesNoAnswers, "bogus_code")
	assert.Len(t, view.YesNoAnswers, 2)
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	input := CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "first visit",
	}
	_, err := reviewService.CreateReview(context.Background(), user.ID, input)
	require.NoError(t, err)

	view, err := reviewService.CreateReview(context.Background(), user.ID, input)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Nil(t, view)
}

func TestReviewService_CreateReview_ConcurrentDuplicate(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)

	// sneak a conflicting row in after the duplicate pre-check has passed,
	// right before the insert, so the unique index is the only guard left
	raced := false
	err := testDB.Callback().Create().Before("gorm:create").Register("concurrent_review", func(d *gorm.DB) {
		if raced || d.Statement.Table != "reviews" {
			return
		}
		raced = true
		_, execErr := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"INSERT INTO reviews (user_id, establishment_id, comment, status) VALUES (?, ?, '', 'published')",
			user.ID, establishment.ID)
		require.NoError(t, execErr)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		testDB.Callback().Create().Remove("concurrent_review")
	})

	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "lost the race",
	})
	assert.True(t, raced)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Nil(t, view)

	// the losing transaction rolled back cleanly, no partial rows leaked
	var count int64
	require.NoError(t, testDB.Model(&model.Review{}).
		Where("user_id = ? AND establishment_id = ?", user.ID, establishment.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres duplicate key",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "idx_reviews_user_establishment" (SQLSTATE 23505)`),
			want: true,
		},
		{
			name: "sqlite unique constraint",
			err:  errors.New("UNIQUE constraint failed: reviews.user_id, reviews.establishment_id"),
			want: true,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestReviewService_CreateReview_EstablishmentNotFound(t *testing.T) {
	reviewService, _, user, _ := setupReviewServiceTest(t)

	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: "99999",
	})
	assert.ErrorIs(t, err, ErrEstablishmentNotFound)
	assert.Nil(t, view)
}

func TestReviewService_CreateReview_InvalidReference(t *testing.T) {
	reviewService, _, user, _ := setupReviewServiceTest(t)

	// neither a numeric id, a chain pseudo-id, nor a place id
	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, view)

	view, err = reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: "not-a-number",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, view)
}

func TestReviewService_CreateReview_ByPlaceID(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		PlaceID: *establishment.PlaceID,
		Comment: "found via maps",
	})
	require.NoError(t, err)
	assert.Equal(t, establishment.ID, view.EstablishmentID)
}

func TestReviewService_CreateReview_ChainReference(t *testing.T) {
	reviewService, testDB, user, _ := setupReviewServiceTest(t)

	chain := &model.Chain{Name: "Burger Barn"}
	require.NoError(t, testDB.Create(chain).Error)

	first := &model.Establishment{Name: "Burger Barn North", City: "Cork", ChainID: &chain.ID}
	second := &model.Establishment{Name: "Burger Barn South", City: "Cork", ChainID: &chain.ID}
	require.NoError(t, testDB.Create(first).Error)
	require.NoError(t, testDB.Create(second).Error)

	// a chain pseudo-id attaches the review to the chain's first location
	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprintf("chain-%d", chain.ID),
		Comment:         "consistent across branches",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, view.EstablishmentID)
	require.NotNil(t, view.ChainID)
	assert.Equal(t, chain.ID, *view.ChainID)
	assert.Equal(t, "Burger Barn", view.ChainName)
}

func TestReviewService_CreateReview_ChainNotFound(t *testing.T) {
	reviewService, _, user, _ := setupReviewServiceTest(t)

	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: "chain-424242",
	})
	assert.ErrorIs(t, err, ErrChainNotFound)
	assert.Nil(t, view)
}

func TestReviewService_CreateReview_ScoreValidation(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	// out-of-range score is a hard failure
	view, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		AllergenScores:  map[string]int{"gluten": 6},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, view)

	// unknown allergen code is dropped, not an error
	view, err = reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		AllergenScores:  map[string]int{"gluten": 3, "kryptonite": 2},
	})
	require.NoError(t, err)
	assert.Len(t, view.AllergenScores, 1)
	assert.Equal(t, 3, view.AllergenScores["gluten"])
}

func TestReviewService_UpdateReview_NoOpAfterSanitization(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)

	rating := 5
	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Rating:          &rating,
		Comment:         "must not be erased",
		AllergenScores:  map[string]int{"gluten": 4},
	})
	require.NoError(t, err)

	var before model.Review
	require.NoError(t, testDB.First(&before, created.ID).Error)

	// a stale optimistic-UI resubmit: everything blank
	emptyComment := ""
	view, err := reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		Comment:        &emptyComment,
		PhotoURLs:      []string{},
		AllergenScores: map[string]int{},
		YesNoAnswers:   map[string]*bool{},
	}, &user.ID)
	require.NoError(t, err)

	assert.Equal(t, "must not be erased", view.Comment)
	assert.Equal(t, 4, view.AllergenScores["gluten"])

	// the stored row was not touched
	var after model.Review
	require.NoError(t, testDB.First(&after, created.ID).Error)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, before.Comment, after.Comment)
}

func TestReviewService_UpdateReview_IdenticalPayloadIsNoOp(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)

	rating := 3
	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Rating:          &rating,
		Comment:         "unchanged",
	})
	require.NoError(t, err)

	var before model.Review
	require.NoError(t, testDB.First(&before, created.ID).Error)

	sameComment := "unchanged"
	sameRating := 3
	_, err = reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		Rating:  &sameRating,
		Comment: &sameComment,
	}, &user.ID)
	require.NoError(t, err)

	var after model.Review
	require.NoError(t, testDB.First(&after, created.ID).Error)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestReviewService_UpdateReview_HeaderFields(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "old comment",
	})
	require.NoError(t, err)

	newComment := "new comment"
	newRating := 2
	view, err := reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		Rating:  &newRating,
		Comment: &newComment,
	}, &user.ID)
	require.NoError(t, err)

	assert.Equal(t, "new comment", view.Comment)
	assert.Equal(t, 2, *view.Rating)
}

func TestReviewService_UpdateReview_CategoryIndependence(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	yes := true
	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		AllergenScores:  map[string]int{"gluten": 4, "dairy": 2},
		YesNoAnswers:    map[string]*bool{"allergen_menu": &yes},
	})
	require.NoError(t, err)

	// replacing the scores must not touch the answers
	view, err := reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		AllergenScores: map[string]int{"sesame": 5},
	}, &user.ID)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"sesame": 5}, view.AllergenScores)
	assert.True(t, view.YesNoAnswers["allergy_menu"])

	// and replacing the answers must not touch the scores
	no := false
	view, err = reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		YesNoAnswers: map[string]*bool{"staff_trained": &no},
	}, &user.ID)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"sesame": 5}, view.AllergenScores)
	assert.Equal(t, map[string]bool{"staff_knowledge": false}, view.YesNoAnswers)
}

func TestReviewService_UpdateReview_Forbidden(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)
	other := createSecondUser(t, testDB)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "mine",
	})
	require.NoError(t, err)

	newComment := "hijacked"
	view, err := reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		Comment: &newComment,
	}, &other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, view)

	// the review is untouched
	var stored model.Review
	require.NoError(t, testDB.First(&stored, created.ID).Error)
	assert.Equal(t, "mine", stored.Comment)
}

func TestReviewService_UpdateReview_AdminBypassesOwnership(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "original",
	})
	require.NoError(t, err)

	newComment := "edited by admin"
	view, err := reviewService.UpdateReview(context.Background(), created.ID, UpdateReviewInput{
		Comment: &newComment,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited by admin", view.Comment)
}

func TestReviewService_UpdateReview_NotFound(t *testing.T) {
	reviewService, _, user, _ := setupReviewServiceTest(t)

	comment := "anything"
	view, err := reviewService.UpdateReview(context.Background(), 99999, UpdateReviewInput{
		Comment: &comment,
	}, &user.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Nil(t, view)
}

func TestReviewService_DeleteReview(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)

	yes := true
	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		AllergenScores:  map[string]int{"gluten": 3},
		YesNoAnswers:    map[string]*bool{"allergen_menu": &yes},
	})
	require.NoError(t, err)

	deletedID, err := reviewService.DeleteReview(created.ID, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deletedID)

	_, err = reviewService.GetReview(created.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// children are gone too
	var scoreCount, answerCount int64
	testDB.Model(&model.AllergenScore{}).Where("review_id = ?", created.ID).Count(&scoreCount)
	testDB.Model(&model.Answer{}).Where("review_id = ?", created.ID).Count(&answerCount)
	assert.Zero(t, scoreCount)
	assert.Zero(t, answerCount)
}

func TestReviewService_DeleteReview_Forbidden(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)
	other := createSecondUser(t, testDB)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
	})
	require.NoError(t, err)

	_, err = reviewService.DeleteReview(created.ID, &other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = reviewService.GetReview(created.ID)
	assert.NoError(t, err)
}

func TestReviewService_ModerateReview(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)
	admin := createSecondUser(t, testDB)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Comment:         "under review",
	})
	require.NoError(t, err)

	view, err := reviewService.ModerateReview(context.Background(), created.ID, admin.ID, model.ReviewStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusRejected, view.Status)

	var stored model.Review
	require.NoError(t, testDB.First(&stored, created.ID).Error)
	require.NotNil(t, stored.ModeratorID)
	assert.Equal(t, admin.ID, *stored.ModeratorID)
	// moderation never alters the review body
	assert.Equal(t, "under review", stored.Comment)
}

func TestReviewService_ModerateReview_InvalidStatus(t *testing.T) {
	reviewService, _, user, establishment := setupReviewServiceTest(t)

	created, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
	})
	require.NoError(t, err)

	view, err := reviewService.ModerateReview(context.Background(), created.ID, user.ID, model.ReviewStatus("vanished"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, view)
}

func TestReviewService_GetReviewsForEstablishment(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)
	other := createSecondUser(t, testDB)

	_, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
	})
	require.NoError(t, err)
	_, err = reviewService.CreateReview(context.Background(), other.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
	})
	require.NoError(t, err)

	// numeric id lookup
	reviews, total, err := reviewService.GetReviewsForEstablishment(fmt.Sprint(establishment.ID), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, reviews, 2)

	// place id lookup resolves to the same establishment
	reviews, total, err = reviewService.GetReviewsForEstablishment(*establishment.PlaceID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, reviews, 2)

	_, _, err = reviewService.GetReviewsForEstablishment("unknown-place", 1, 20)
	assert.ErrorIs(t, err, ErrEstablishmentNotFound)
}

func TestReviewService_GetReviewsForChain(t *testing.T) {
	reviewService, testDB, user, _ := setupReviewServiceTest(t)
	other := createSecondUser(t, testDB)

	chain := &model.Chain{Name: "Noodle House"}
	require.NoError(t, testDB.Create(chain).Error)
	north := &model.Establishment{Name: "Noodle House North", City: "Galway", ChainID: &chain.ID}
	south := &model.Establishment{Name: "Noodle House South", City: "Galway", ChainID: &chain.ID}
	require.NoError(t, testDB.Create(north).Error)
	require.NoError(t, testDB.Create(south).Error)

	_, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(north.ID),
	})
	require.NoError(t, err)
	_, err = reviewService.CreateReview(context.Background(), other.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(south.ID),
	})
	require.NoError(t, err)

	reviews, total, err := reviewService.GetReviewsForChain(chain.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, reviews, 2)

	_, _, err = reviewService.GetReviewsForChain(99999, 1, 20)
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestReviewService_GetReviewsForUser(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)

	second := &model.Establishment{Name: "Second Spot", City: "Dublin"}
	require.NoError(t, testDB.Create(second).Error)

	for _, estID := range []uint{establishment.ID, second.ID} {
		_, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
			EstablishmentID: fmt.Sprint(estID),
		})
		require.NoError(t, err)
	}

	reviews, err := reviewService.GetReviewsForUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestReviewService_GetEstablishmentStats(t *testing.T) {
	reviewService, testDB, user, establishment := setupReviewServiceTest(t)
	other := createSecondUser(t, testDB)

	r1 := 4
	_, err := reviewService.CreateReview(context.Background(), user.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Rating:          &r1,
		AllergenScores:  map[string]int{"tree_nuts": 4, "gluten": 5},
	})
	require.NoError(t, err)

	r2 := 2
	_, err = reviewService.CreateReview(context.Background(), other.ID, CreateReviewInput{
		EstablishmentID: fmt.Sprint(establishment.ID),
		Rating:          &r2,
		AllergenScores:  map[string]int{"tree_nuts": 2},
	})
	require.NoError(t, err)

	stats, err := reviewService.GetEstablishmentStats(establishment.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.ReviewCount)
	assert.InDelta(t, 3.0, stats.AverageRating, 0.001)
	// averages are keyed by client codes
	assert.InDelta(t, 3.0, stats.AllergenAverages["tree_nuts"], 0.001)
	assert.InDelta(t, 5.0, stats.AllergenAverages["gluten"], 0.001)
	assert.NotContains(t, stats.AllergenAverages, "nuts")

	// rejected reviews drop out of the fold
	var rejected model.Review
	require.NoError(t, testDB.Where("user_id = ?", other.ID).First(&rejected).Error)
	_, err = reviewService.ModerateReview(context.Background(), rejected.ID, user.ID, model.ReviewStatusRejected)
	require.NoError(t, err)

	stats, err = reviewService.GetEstablishmentStats(establishment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ReviewCount)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.InDelta(t, 4.0, stats.AllergenAverages["tree_nuts"], 0.001)

	_, err = reviewService.GetEstablishmentStats(99999)
	assert.ErrorIs(t, err, ErrEstablishmentNotFound)
}
