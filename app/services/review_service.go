package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/collection"
)

// ReviewView is a stored review enriched with the reviewer's public profile.
type ReviewView struct {
	models.Review
	ReviewerProfile models.Profile `json:"reviewerProfile"`
}

// ReviewService appends seller reviews and maintains the rating aggregate
// on the seller's user document.
type ReviewService struct {
	users UserRepository
}

func NewReviewService(users UserRepository) *ReviewService {
	return &ReviewService{users: users}
}

// AddReview records a review against a seller. Self-reviews and second
// reviews from the same reviewer are rejected. On success the seller's
// averageRating and totalReviews are recomputed from all stored reviews.
func (s *ReviewService) AddReview(ctx context.Context, sellerID, reviewerID string, rating int, comment string) (*ReviewView, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrValidation)
	}

	sid, err := primitive.ObjectIDFromHex(sellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seller id", ErrValidation)
	}
	rid, err := primitive.ObjectIDFromHex(reviewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reviewer id", ErrValidation)
	}
	if sid == rid {
		return nil, fmt.Errorf("%w: cannot review yourself", ErrConflict)
	}

	seller, err := s.users.FindByID(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("seller %s: %w", sellerID, err)
	}
	reviewer, err := s.users.FindByID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("reviewer %s: %w", reviewerID, err)
	}

	alreadyReviewed := collection.Contains(seller.SellerReviews, func(r models.Review) bool {
		return r.Reviewer == rid
	})
	if alreadyReviewed {
		return nil, fmt.Errorf("%w: you have already reviewed this seller", ErrConflict)
	}

	review := models.Review{
		Reviewer:  rid,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	seller.SellerReviews = append(seller.SellerReviews, review)
	seller.RecalculateRating()

	if err := s.users.Update(ctx, seller); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	return &ReviewView{Review: review, ReviewerProfile: reviewer.Profile()}, nil
}
