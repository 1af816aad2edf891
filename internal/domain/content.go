package domain

import "time"

// HeroSlide is one slide of the home page carousel
type HeroSlide struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title" validate:"required"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Image    string `json:"image" yaml:"image" validate:"required"`
	Link     string `json:"link" yaml:"link"`
}

type PromoBanner struct {
	Text   string     `json:"text" yaml:"text"`
	Link   string     `json:"link" yaml:"link"`
	Active bool       `json:"active" yaml:"active"`
	EndsAt *time.Time `json:"endsAt,omitempty" yaml:"endsAt"`
}

type Brand struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Logo string `json:"logo" yaml:"logo"`
}

// Spotlight highlights a single product on the home page
type Spotlight struct {
	ProductID   int    `json:"productId" yaml:"productId"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
}

// Content is the marketing copy edited from the back office
type Content struct {
	HeroSlides []HeroSlide `json:"heroSlides" yaml:"heroSlides"`
	Promo      PromoBanner `json:"promo" yaml:"promo"`
	Brands     []Brand     `json:"brands" yaml:"brands"`
	Spotlight  Spotlight   `json:"spotlight" yaml:"spotlight"`
}

func (c Content) Clone() Content {
	out := c
	out.HeroSlides = append([]HeroSlide(nil), c.HeroSlides...)
	out.Brands = append([]Brand(nil), c.Brands...)
	if c.Promo.EndsAt != nil {
		t := *c.Promo.EndsAt
		out.Promo.EndsAt = &t
	}
	return out
}
