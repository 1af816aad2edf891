package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewInput is a review as submitted by a shopper
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,notblank,max=2000"`
}

// ReviewService defines the interface for product reviews
type ReviewService interface {
	ListForProduct(ctx context.Context, productID int) []domain.Review
	ListAll(ctx context.Context) []domain.Review
	Featured(ctx context.Context) []domain.Review
	Add(ctx context.Context, productID int, userName string, input ReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) error
}

type reviewService struct {
	store  *store.Store
	logger *zap.Logger
}

func NewReviewService(st *store.Store, logger *zap.Logger) ReviewService {
	return &reviewService{store: st, logger: logger}
}

func (s *reviewService) collect(keep func(domain.Review) bool) []domain.Review {
	out := []domain.Review{}
	s.store.View(func(st store.State) {
		for _, r := range st.Reviews {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}

func (s *reviewService) ListForProduct(ctx context.Context, productID int) []domain.Review {
	return s.collect(func(r domain.Review) bool { return r.ProductID == productID })
}

func (s *reviewService) ListAll(ctx context.Context) []domain.Review {
	return s.collect(func(domain.Review) bool { return true })
}

// Featured lists the reviews picked for the home page
func (s *reviewService) Featured(ctx context.Context) []domain.Review {
	return s.collect(func(r domain.Review) bool { return r.IsFeatured })
}

func (s *reviewService) Add(ctx context.Context, productID int, userName string, input ReviewInput) (*domain.Review, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	cmd := &store.AddReview{Review: domain.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserName:  strings.TrimSpace(userName),
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	s.logger.Info("Review added", zap.String("review_id", cmd.Review.ID), zap.Int("product_id", productID))
	return &cmd.Review, nil
}

func (s *reviewService) Delete(ctx context.Context, id string) error {
	if err := s.store.Dispatch(ctx, &store.DeleteReview{ReviewID: id}); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *reviewService) SetFeatured(ctx context.Context, id string, featured bool) error {
	if err := s.store.Dispatch(ctx, &store.SetReviewFeatured{ReviewID: id, Featured: featured}); err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}
