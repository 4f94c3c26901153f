package brackets

import (
	"math/rand/v2"
	"testing"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(teams []models.Team) []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.Name
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

func TestSeed_RatingOrdersDescending(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewPCG(1, 2)))
	teams := []models.Team{
		{ID: 1, Name: "A", Rating: 1000},
		{ID: 2, Name: "B", Rating: 1200},
		{ID: 3, Name: "C", Rating: 900},
	}

	seeded, err := seeder.Seed(teams, models.SeedingRating, SeedOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, names(seeded))
	assert.Equal(t, []string{"A", "B", "C"}, names(teams), "input must not be reordered")
}

func TestSeed_RatingTiesKeepInputOrder(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewPCG(1, 2)))
	teams := []models.Team{
		{ID: 1, Name: "A", Rating: 1000},
		{ID: 2, Name: "B", Rating: 1500},
		{ID: 3, Name: "C", Rating: 1000},
		{ID: 4, Name: "D", Rating: 1000},
	}

	seeded, err := seeder.Seed(teams, models.SeedingRating, SeedOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C", "D"}, names(seeded))
}

func TestSeed_ManualKeepsOrder(t *testing.T) {
	seeder := NewSeeder(nil)
	teams := []models.Team{{ID: 3, Name: "C", Rating: 1}, {ID: 1, Name: "A", Rating: 9}, {ID: 2, Name: "B", Rating: 5}}

	seeded, err := seeder.Seed(teams, models.SeedingManual, SeedOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(seeded))
}

func TestSeed_RandomIsPermutation(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewPCG(42, 7)))
	teams := make([]models.Team, 16)
	for i := range teams {
		teams[i] = models.Team{ID: i + 1, Name: string(rune('A' + i))}
	}

	seeded, err := seeder.Seed(teams, models.SeedingRandom, SeedOptions{})

	require.NoError(t, err)
	assert.ElementsMatch(t, names(teams), names(seeded))
}

func TestSeed_BalancedWithoutGroupsMatchesRating(t *testing.T) {
	seeder := NewSeeder(nil)
	teams := []models.Team{{ID: 1, Name: "A", Rating: 1}, {ID: 2, Name: "B", Rating: 3}, {ID: 3, Name: "C", Rating: 2}}

	balancedSeeds, err := seeder.Seed(teams, models.SeedingBalanced, SeedOptions{})
	require.NoError(t, err)
	ratingSeeds, err := seeder.Seed(teams, models.SeedingRating, SeedOptions{})
	require.NoError(t, err)

	assert.Equal(t, names(ratingSeeds), names(balancedSeeds))
}

func TestSeed_BalancedInterleavesTiers(t *testing.T) {
	seeder := NewSeeder(nil)
	teams := []models.Team{
		{ID: 1, Name: "A", Rating: 400},
		{ID: 2, Name: "B", Rating: 300},
		{ID: 3, Name: "C", Rating: 200},
		{ID: 4, Name: "D", Rating: 100},
	}

	seeded, err := seeder.Seed(teams, models.SeedingBalanced, SeedOptions{GroupCount: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B", "D"}, names(seeded))
}

func TestSeed_RegionalSpreadsRegions(t *testing.T) {
	seeder := NewSeeder(nil)
	teams := []models.Team{
		{ID: 1, Name: "EU1", Rating: 400, Region: strPtr("eu")},
		{ID: 2, Name: "EU2", Rating: 300, Region: strPtr("eu")},
		{ID: 3, Name: "NA1", Rating: 200, Region: strPtr("na")},
		{ID: 4, Name: "NA2", Rating: 100, Region: strPtr("na")},
	}

	seeded, err := seeder.Seed(teams, models.SeedingRegional, SeedOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"EU1", "NA1", "EU2", "NA2"}, names(seeded))
}

func TestSeed_RandomizeKeepsTeams(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewPCG(3, 4)))
	teams := make([]models.Team, 10)
	for i := range teams {
		teams[i] = models.Team{ID: i + 1, Name: string(rune('A' + i)), Rating: float64(100 - i)}
	}

	seeded, err := seeder.Seed(teams, models.SeedingRating, SeedOptions{Randomize: true})

	require.NoError(t, err)
	assert.ElementsMatch(t, names(teams), names(seeded))
}

func TestSeed_Errors(t *testing.T) {
	seeder := NewSeeder(nil)

	tests := []struct {
		name   string
		teams  []models.Team
		method models.SeedingMethod
	}{
		{name: "single team", teams: []models.Team{{ID: 1}}, method: models.SeedingRating},
		{name: "no teams", teams: nil, method: models.SeedingRating},
		{name: "duplicate ids", teams: []models.Team{{ID: 1}, {ID: 1}}, method: models.SeedingRating},
		{name: "unknown method", teams: []models.Team{{ID: 1}, {ID: 2}}, method: "snake"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seeder.Seed(tt.teams, tt.method, SeedOptions{})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAssignmentsAndSeedOrder(t *testing.T) {
	seeded := []models.Team{{ID: 7, Rating: 10}, {ID: 3, Rating: 5}}

	assignments := Assignments(9, seeded)

	require.Len(t, assignments, 2)
	assert.Equal(t, models.SeedAssignment{TournamentID: 9, TeamID: 7, Seed: 1, Rating: 10}, assignments[0])
	assert.Equal(t, []int{7, 3}, SeedOrder([]models.SeedAssignment{assignments[1], assignments[0]}))
}
