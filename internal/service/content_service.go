package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// ContentService defines the interface for home page content
type ContentService interface {
	Get(ctx context.Context) domain.Content
	UpdateHeroSlides(ctx context.Context, slides []domain.HeroSlide) (domain.Content, error)
	UpdatePromoBanner(ctx context.Context, promo domain.PromoBanner) (domain.Content, error)
	UpdateBrands(ctx context.Context, brands []domain.Brand) (domain.Content, error)
	UpdateSpotlight(ctx context.Context, spotlight domain.Spotlight) (domain.Content, error)
}

type contentService struct {
	store *store.Store
}

func NewContentService(st *store.Store) ContentService {
	return &contentService{store: st}
}

func (s *contentService) Get(ctx context.Context) domain.Content {
	var c domain.Content
	s.store.View(func(st store.State) {
		c = st.Content.Clone()
	})
	return c
}

func (s *contentService) update(ctx context.Context, cmd store.Command) (domain.Content, error) {
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return domain.Content{}, fmt.Errorf("failed to update content: %w", err)
	}
	return s.Get(ctx), nil
}

func (s *contentService) UpdateHeroSlides(ctx context.Context, slides []domain.HeroSlide) (domain.Content, error) {
	for _, slide := range slides {
		if err := validation.Struct(slide); err != nil {
			return domain.Content{}, err
		}
	}
	return s.update(ctx, &store.UpdateHeroSlides{Slides: slides})
}

func (s *contentService) UpdatePromoBanner(ctx context.Context, promo domain.PromoBanner) (domain.Content, error) {
	return s.update(ctx, &store.UpdatePromoBanner{Promo: promo})
}

func (s *contentService) UpdateBrands(ctx context.Context, brands []domain.Brand) (domain.Content, error) {
	for _, brand := range brands {
		if err := validation.Struct(brand); err != nil {
			return domain.Content{}, err
		}
	}
	return s.update(ctx, &store.UpdateBrands{Brands: brands})
}

func (s *contentService) UpdateSpotlight(ctx context.Context, spotlight domain.Spotlight) (domain.Content, error) {
	return s.update(ctx, &store.UpdateSpotlight{Spotlight: spotlight})
}
