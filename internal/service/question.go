package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/geoquiz/geoquiz-api/internal/scoring"
)

const minChoices = 2

// PickQuestion selects a random playable city with some of its images and a set of country choices
func (s *Service) PickQuestion(ctx context.Context, req model.QuestionRequest) (*model.Question, error) {
	numChoices := s.game.DefaultChoices
	question := &model.Question{}

	if req.Difficulty != "" {
		level, err := scoring.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, validationError("difficulty must be one of easy, normal, hard")
		}
		numChoices = level.Choices
		question.Difficulty = string(level.Difficulty)
		question.TimerSeconds = level.TimerSeconds
	}
	if req.NumChoices != 0 {
		numChoices = req.NumChoices
	}

	ids, err := s.cityRepo.ListEligibleCityIDs(ctx, s.game.MinImages)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible cities: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoEligibleCity
	}

	city, err := s.cityRepo.GetCityWithCountry(ctx, ids[rand.Intn(len(ids))])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	images, err := s.imageRepo.ListValidImages(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	rand.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	if len(images) > s.game.MaxImages {
		images = images[:s.game.MaxImages]
	}

	choices, err := s.BuildChoices(ctx, city.CountryID, numChoices)
	if err != nil {
		return nil, err
	}

	question.City = model.QuestionCity{
		ID:          city.ID,
		Name:        city.Name,
		CountryID:   city.CountryID,
		CountryName: city.CountryName,
		CountryCode: city.CountryCode,
	}
	question.Images = make([]model.QuestionImage, 0, len(images))
	for _, img := range images {
		question.Images = append(question.Images, model.QuestionImage{Title: img.Title, URL: img.URL})
	}
	question.Choices = choices

	return question, nil
}

// BuildChoices returns n distinct countries in random order, one of them being the correct country
func (s *Service) BuildChoices(ctx context.Context, correctCountryID int64, n int) ([]model.CountryChoice, error) {
	if n < minChoices {
		return nil, validationError("num_choices must be at least %d", minChoices)
	}

	countries, err := s.countryRepo.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	if len(countries) < n {
		return nil, ErrInsufficientCountries
	}

	var correct *model.Country
	others := make([]model.Country, 0, len(countries)-1)
	for i := range countries {
		if countries[i].ID == correctCountryID {
			correct = &countries[i]
			continue
		}
		others = append(others, countries[i])
	}
	if correct == nil {
		return nil, ErrCountryNotFound
	}

	rand.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	picked := append(others[:n-1], *correct)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })

	choices := make([]model.CountryChoice, 0, n)
	for _, c := range picked {
		choices = append(choices, model.CountryChoice{ID: c.ID, Name: c.Name, Code: c.Code})
	}
	return choices, nil
}
