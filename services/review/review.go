// Package review stores the ratings users leave on products.
package review

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MinRating  = 1
	MaxRating  = 5
	MinBodyLen = 10
)

// Input is the editable part of a review.
type Input struct {
	Headline string
	Body     string
	Rating   int
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Headline) == "" {
		return apperror.Validation("headline is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Body)) < MinBodyLen {
		return apperror.Validation("review must be at least %d characters", MinBodyLen)
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return apperror.Validation("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func New(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log}
}

// Create adds userID's review of productID.
func (s *Service) Create(ctx context.Context, userID string, productID uint, in Input) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := db.Select("id").First(&models.Product{}, productID).Error; err != nil {
		return nil, apperror.FromDB(err, "product")
	}

	r := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Headline:  strings.TrimSpace(in.Headline),
		Body:      strings.TrimSpace(in.Body),
		Rating:    in.Rating,
	}
	if err := db.Create(r).Error; err != nil {
		if errors.Is(apperror.FromDB(err, "review"), apperror.ErrConflict) {
			return nil, apperror.Conflict("you have already reviewed this product")
		}
		return nil, errors.Wrap(err, "create review")
	}
	s.log.WithFields(logrus.Fields{"product_id": productID, "user_id": userID, "rating": in.Rating}).Info("review created")
	return r, nil
}

// List returns one page of a product's reviews, newest first and higher ratings first within the same instant.
func (s *Service) List(ctx context.Context, productID uint, page, limit int) ([]models.Review, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	out := []models.Review{}
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, rating DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return out, nil
}

// UpdateOwn rewrites a review written by userID. Someone else's review reads as not found.
func (s *Service) UpdateOwn(ctx context.Context, userID string, productID, reviewID uint, in Input) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var r models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).
			Where("id = ? AND product_id = ? AND user_id = ?", reviewID, productID, userID).
			Updates(map[string]any{
				"headline": strings.TrimSpace(in.Headline),
				"body":     strings.TrimSpace(in.Body),
				"rating":   in.Rating,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update review")
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("review not found")
		}
		return errors.Wrap(tx.First(&r, reviewID).Error, "reload review")
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
