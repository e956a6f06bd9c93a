package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/campusmart/app/services"
)

func TestAddReview(t *testing.T) {
	seller := seedUser("rated.seller@students.iiit.ac.in")
	alice := seedUser("alice@students.iiit.ac.in")
	bob := seedUser("bob@students.iiit.ac.in")
	users := newFakeUserRepo(seller, alice, bob)
	svc := services.NewReviewService(users)
	ctx := context.Background()

	view, err := svc.AddReview(ctx, seller.ID.Hex(), alice.ID.Hex(), 4, "Smooth handover")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, view.Reviewer)
	assert.Equal(t, alice.ID, view.ReviewerProfile.ID)
	assert.Equal(t, 4, view.Rating)

	_, err = svc.AddReview(ctx, seller.ID.Hex(), bob.ID.Hex(), 5, "Great seller")
	require.NoError(t, err)

	// The aggregate on the seller document tracks all stored reviews.
	stored, err := users.FindByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalReviews)
	assert.InDelta(t, 4.5, stored.AverageRating, 1e-9)
}

func TestAddReview_SelfReview(t *testing.T) {
	seller := seedUser("self.seller@students.iiit.ac.in")
	svc := services.NewReviewService(newFakeUserRepo(seller))

	_, err := svc.AddReview(context.Background(), seller.ID.Hex(), seller.ID.Hex(), 5, "Flawless")
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAddReview_Duplicate(t *testing.T) {
	seller := seedUser("dup.seller@students.iiit.ac.in")
	reviewer := seedUser("dup.reviewer@students.iiit.ac.in")
	svc := services.NewReviewService(newFakeUserRepo(seller, reviewer))
	ctx := context.Background()

	_, err := svc.AddReview(ctx, seller.ID.Hex(), reviewer.ID.Hex(), 3, "Okay")
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, seller.ID.Hex(), reviewer.ID.Hex(), 5, "Changed my mind")
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAddReview_Invalid(t *testing.T) {
	seller := seedUser("inv.seller@students.iiit.ac.in")
	reviewer := seedUser("inv.reviewer@students.iiit.ac.in")
	svc := services.NewReviewService(newFakeUserRepo(seller, reviewer))
	ctx := context.Background()

	_, err := svc.AddReview(ctx, seller.ID.Hex(), reviewer.ID.Hex(), 0, "Too low")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.AddReview(ctx, seller.ID.Hex(), reviewer.ID.Hex(), 6, "Too high")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.AddReview(ctx, seller.ID.Hex(), reviewer.ID.Hex(), 3, "")
	assert.ErrorIs(t, err, services.ErrValidation)
}
