package reviewControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"gorm.io/gorm"
)

type ReviewInput struct {
	Ratings int    `json:"ratings" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type UpdateReviewInput struct {
	Ratings *int    `json:"ratings" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

// GET /products/:id/reviews
func ListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		var reviews []models.Review
		if err := db.Preload("User").Where("product_id = ?", productID).
			Order("created_at DESC").Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// GET /products/:id/reviews/:review_id
func GetReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := loadReview(db, c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

// POST /products/:id/reviews
//
// The author always comes from the token and the product from the path;
// neither is ever client-supplied. No purchase check is enforced.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			}
			return
		}

		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		review := models.Review{
			ProductID: productID,
			UserID:    middleware.UserID(c),
			Ratings:   input.Ratings,
			Comment:   input.Comment,
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// PATCH /products/:id/reviews/:review_id
func UpdateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := loadReview(db, c)
		if !ok {
			return
		}
		if review.UserID != middleware.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author may modify this review"})
			return
		}

		var input UpdateReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Ratings != nil {
			review.Ratings = *input.Ratings
		}
		if input.Comment != nil {
			review.Comment = *input.Comment
		}

		if err := db.Save(review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

// DELETE /products/:id/reviews/:review_id
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, ok := loadReview(db, c)
		if !ok {
			return
		}
		if review.UserID != middleware.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author may delete this review"})
			return
		}

		if err := db.Delete(review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return uint(id), true
}

// loadReview fetches the review scoped to the product in the path.
func loadReview(db *gorm.DB, c *gin.Context) (*models.Review, bool) {
	productID, ok := productIDParam(c)
	if !ok {
		return nil, false
	}
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return nil, false
	}

	var review models.Review
	if err := db.Where("id = ? AND product_id = ?", reviewID, productID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
		}
		return nil, false
	}
	return &review, true
}
