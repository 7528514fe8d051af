package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"machinewise/internal/models"
)

// SimulatorService produces synthetic readings for active sensors. It only
// returns values; classification and persistence stay with the caller so the
// producer is substitutable in tests.
type SimulatorService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatorService() *SimulatorService {
	return &SimulatorService{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate draws uniformly from [MinValue, MaxValue], rounded to one decimal.
func (s *SimulatorService) Generate(sensor models.Sensor) float64 {
	s.mu.Lock()
	v := sensor.MinValue + s.rnd.Float64()*(sensor.MaxValue-sensor.MinValue)
	s.mu.Unlock()
	return math.Round(v*10) / 10
}
