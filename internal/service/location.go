package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classifieds-api/internal/cache"
	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
)

const locationCacheTTL = 10 * time.Minute

// LocationService serves city and suburb lookups. The datasets change
// rarely, so results are cached.
type LocationService struct {
	repo  repository.LocationRepository
	cache cache.Cache
}

// NewLocationService creates a new location service. The cache may be nil.
func NewLocationService(repo repository.LocationRepository, c cache.Cache) *LocationService {
	if repo == nil {
		return nil
	}
	return &LocationService{repo: repo, cache: c}
}

// GetMajorCities returns up to limit cities ordered by population.
func (s *LocationService) GetMajorCities(ctx context.Context, limit int) ([]model.City, error) {
	key := fmt.Sprintf("locations:cities:%d", limit)

	var cities []model.City
	err := s.cached(ctx, key, &cities, func() (interface{}, error) {
		return s.repo.MajorCities(ctx, limit)
	})
	return cities, err
}

// GetSuburbsByCity returns up to limit suburbs of a city.
func (s *LocationService) GetSuburbsByCity(ctx context.Context, city string, limit int) ([]model.Suburb, error) {
	key := fmt.Sprintf("locations:suburbs:%s:%d", city, limit)

	var suburbs []model.Suburb
	err := s.cached(ctx, key, &suburbs, func() (interface{}, error) {
		return s.repo.SuburbsByCity(ctx, city, limit)
	})
	return suburbs, err
}

// cached reads through the cache into dest, computing and storing the value
// on a miss.
func (s *LocationService) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error)) error {
	if s.cache == nil {
		value, err := fetch()
		if err != nil {
			return err
		}
		return reencode(value, dest)
	}

	data, err := s.cache.GetOrSet(ctx, key, locationCacheTTL, func() ([]byte, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func reencode(src, dest interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
