package domain

import "time"

// Review is a shopper's rating of a product
type Review struct {
	ID         string    `json:"id"`
	ProductID  int       `json:"productId"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Date       time.Time `json:"date"`
	IsFeatured bool      `json:"isFeatured"`
}

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// ReviewsFor returns the reviews of one product
func ReviewsFor(reviews []Review, productID int) []Review {
	var out []Review
	for _, r := range reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// AverageRating returns the mean rating of productID and how many reviews it has
func AverageRating(reviews []Review, productID int) (float64, int) {
	sum, count := 0, 0
	for _, r := range reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

func FindReview(reviews []Review, id string) int {
	for i := range reviews {
		if reviews[i].ID == id {
			return i
		}
	}
	return -1
}
