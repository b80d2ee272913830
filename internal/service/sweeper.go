package service

import (
	"context"
	"log"
	"sync"
	"time"

	"classifieds-api/internal/repository"
)

// SweeperConfig holds configuration for the expiry sweeper.
type SweeperConfig struct {
	// SweepInterval is how often the sweeper runs.
	// Default: 5 minutes
	SweepInterval time.Duration
}

// DefaultSweeperConfig returns default sweeper configuration.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		SweepInterval: 5 * time.Minute,
	}
}

// ExpirySweeper periodically marks overdue pending offers expired and
// releases lapsed listing reservations. Read paths already judge expiry by
// wall-clock comparison; the sweeper just brings stored state in line.
type ExpirySweeper struct {
	offers    repository.OfferRepository
	listings  repository.ListingRepository
	config    SweeperConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewExpirySweeper creates a new expiry sweeper.
func NewExpirySweeper(offers repository.OfferRepository, listings repository.ListingRepository, config SweeperConfig) *ExpirySweeper {
	if config.SweepInterval == 0 {
		config.SweepInterval = 5 * time.Minute
	}

	return &ExpirySweeper{
		offers:   offers,
		listings: listings,
		config:   config,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweeper.
func (s *ExpirySweeper) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.SweepInterval)
	s.mu.Unlock()

	log.Printf("[ExpirySweeper] Started - interval:%v", s.config.SweepInterval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop halts the sweeper.
func (s *ExpirySweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.isRunning = false
		s.mu.Unlock()
		close(s.stopCh)
		log.Println("[ExpirySweeper] Stopped")
	})
}

// sweep runs one pass over offers and reservations.
func (s *ExpirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()

	expired, err := s.offers.ExpirePendingBefore(ctx, now)
	if err != nil {
		log.Printf("[ExpirySweeper] Offer sweep error: %v", err)
	} else if expired > 0 {
		log.Printf("[ExpirySweeper] Expired %d pending offers", expired)
	}

	released, err := s.listings.ReleaseExpiredReservations(ctx, now)
	if err != nil {
		log.Printf("[ExpirySweeper] Reservation sweep error: %v", err)
	} else if released > 0 {
		log.Printf("[ExpirySweeper] Released %d lapsed reservations", released)
	}
}
