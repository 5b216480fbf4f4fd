package factories

import (
	"math/rand"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/jaswdr/faker"
)

// DriverFactory assigns each simulated driver a randomized home and work
// coordinate around the configured base points. The same rng seed yields
// the same roster.
type DriverFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewDriverFactory(rng *rand.Rand) *DriverFactory {
	return &DriverFactory{
		fake: faker.NewWithSeed(rand.NewSource(rng.Int63())),
		rng:  rng,
	}
}

func (df *DriverFactory) CreateDriver(config *models.Config, id int) models.Driver {
	return models.Driver{
		ID:       id,
		Name:     df.fake.Person().Name(),
		JoinDate: df.fake.Time().TimeBetween(config.StartDate.AddDate(-1, 0, 0), config.StartDate),
		Home: models.Location{
			Lat: config.HomeBase.Lat + df.uniform(config.HomeJitter),
			Lon: config.HomeBase.Lon + df.uniform(config.HomeJitter),
		},
		Work: models.Location{
			Lat: config.WorkBase.Lat + df.uniform(config.WorkJitter),
			Lon: config.WorkBase.Lon + df.uniform(config.WorkJitter),
		},
	}
}

// uniform draws from [-spread, spread).
func (df *DriverFactory) uniform(spread float64) float64 {
	return (df.rng.Float64()*2 - 1) * spread
}
