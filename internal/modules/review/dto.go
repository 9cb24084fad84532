package review

type CreateReviewRequest struct {
	HotelID int64  `json:"hotel_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}
