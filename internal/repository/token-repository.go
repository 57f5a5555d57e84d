package repository

import (
	"errors"
	"log"

	"github.com/MediExpress/auth_service/internal/domain"
	"gorm.io/gorm"
)

type TokenRepository interface {
	CreateToken(token *domain.AccessToken) error
	FindTokenById(tokenID string) (*domain.AccessToken, error)
	DeleteToken(tokenID string) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateToken(token *domain.AccessToken) error {
	if token == nil || token.ID == "" {
		return errors.New("nil token")
	}

	if err := r.db.Create(token).Error; err != nil {
		log.Printf("create access token error: %v", err)
		return errors.New("failed to create access token")
	}
	return nil
}

func (r *tokenRepository) FindTokenById(tokenID string) (*domain.AccessToken, error) {
	token := &domain.AccessToken{}

	if err := r.db.First(token, "id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		log.Printf("find access token error: %v", err)
		return nil, errors.New("failed to find access token")
	}

	return token, nil
}

func (r *tokenRepository) DeleteToken(tokenID string) error {
	if err := r.db.Delete(&domain.AccessToken{}, "id = ?", tokenID).Error; err != nil {
		log.Printf("delete access token error: %v", err)
		return errors.New("failed to delete access token")
	}
	return nil
}
