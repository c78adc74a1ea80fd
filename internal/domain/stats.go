package domain

// UserStats summarizes a user's study activity across all of their cards.
type UserStats struct {
	TotalCards         int          `json:"totalCards"`
	TotalUnviewedCards int          `json:"totalUnviewedCards"`
	TotalCardViews     int          `json:"totalCardViews"`
	TotalLastRating1   int          `json:"totalLastRating1"`
	TotalLastRating2   int          `json:"totalLastRating2"`
	TotalLastRating3   int          `json:"totalLastRating3"`
	TotalLastRating4   int          `json:"totalLastRating4"`
	TotalLastRating5   int          `json:"totalLastRating5"`
	HardestCard        *CardDetails `json:"hardestCard"`
	MostViewedCard     *CardDetails `json:"mostViewedCard"`
}

// SetLastRatingCount stores the number of cards whose last rating equals rating.
// Out-of-range ratings are ignored.
func (s *UserStats) SetLastRatingCount(rating, count int) {
	switch rating {
	case 1:
		s.TotalLastRating1 = count
	case 2:
		s.TotalLastRating2 = count
	case 3:
		s.TotalLastRating3 = count
	case 4:
		s.TotalLastRating4 = count
	case 5:
		s.TotalLastRating5 = count
	}
}
