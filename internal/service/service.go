package service

import (
	"time"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/repository"
)

// Service provides the game logic behind the API. It keeps no game state between calls.
type Service struct {
	countryRepo repository.CountryRepository
	cityRepo    repository.CityRepository
	imageRepo   repository.ImageRepository
	playerRepo  repository.PlayerRepository
	sessionRepo repository.SessionRepository
	scoreRepo   repository.ScoreRepository

	game config.GameConfig
	now  func() time.Time
}

// NewService creates a new service instance
func NewService(repos *repository.Container, game config.GameConfig) *Service {
	return &Service{
		countryRepo: repos.Country,
		cityRepo:    repos.City,
		imageRepo:   repos.Image,
		playerRepo:  repos.Player,
		sessionRepo: repos.Session,
		scoreRepo:   repos.Score,
		game:        game,
		now:         func() time.Time { return time.Now().UTC() },
	}
}
