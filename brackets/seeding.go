package brackets

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/bracket-engine/models"
)

type SeedOptions struct {
	// Randomize применяет ограниченную перестановку после основного посева.
	Randomize bool
	// GroupCount - количество групп для balanced; меньше 2 означает "без групп".
	GroupCount int
}

// Seeder is safe for concurrent use; the generator is guarded by mu.
type Seeder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeder returns a seeder using rng; nil seeds a generator from the clock.
func NewSeeder(rng *rand.Rand) *Seeder {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Seeder{rng: rng}
}

// Seed orders teams so that index 0 is seed 1.
func (s *Seeder) Seed(teams []models.Team, method models.SeedingMethod, opts SeedOptions) ([]models.Team, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: at least 2 teams are required for seeding, got %d", ErrInvalidInput, len(teams))
	}
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	if err := validateTeamIDs(ids); err != nil {
		return nil, err
	}

	var seeded []models.Team
	switch method {
	case models.SeedingRating, "":
		seeded = byRating(teams)
	case models.SeedingRandom:
		seeded = cloneTeams(teams)
		s.mu.Lock()
		s.rng.Shuffle(len(seeded), func(i, j int) { seeded[i], seeded[j] = seeded[j], seeded[i] })
		s.mu.Unlock()
	case models.SeedingManual:
		seeded = cloneTeams(teams)
	case models.SeedingBalanced:
		seeded = balanced(teams, opts.GroupCount)
	case models.SeedingRegional:
		seeded = regional(teams)
	default:
		return nil, fmt.Errorf("%w: unknown seeding method %q", ErrInvalidInput, method)
	}

	if opts.Randomize {
		s.mu.Lock()
		s.shake(seeded)
		s.mu.Unlock()
	}
	return seeded, nil
}

// shake swaps roughly a fifth of the seeds, each within 30% of the field around its position.
func (s *Seeder) shake(teams []models.Team) {
	n := len(teams)
	swaps := max(1, n*20/100)
	window := max(1, n*30/100)
	for i := 0; i < swaps; i++ {
		a := s.rng.IntN(n)
		b := a + s.rng.IntN(2*window+1) - window
		b = min(max(b, 0), n-1)
		teams[a], teams[b] = teams[b], teams[a]
	}
}

func cloneTeams(teams []models.Team) []models.Team {
	out := make([]models.Team, len(teams))
	copy(out, teams)
	return out
}

func byRating(teams []models.Team) []models.Team {
	out := cloneTeams(teams)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

// balanced splits rating-sorted teams into tiers of groupCount and deals one team per tier in turn.
func balanced(teams []models.Team, groupCount int) []models.Team {
	sorted := byRating(teams)
	if groupCount < 2 || groupCount >= len(sorted) {
		return sorted
	}
	tierSize := (len(sorted) + groupCount - 1) / groupCount
	tiers := make([][]models.Team, 0, groupCount)
	for start := 0; start < len(sorted); start += tierSize {
		end := min(start+tierSize, len(sorted))
		tiers = append(tiers, sorted[start:end])
	}
	return interleave(tiers)
}

// regional keeps teams of the same region apart in seed order.
func regional(teams []models.Team) []models.Team {
	sorted := byRating(teams)
	order := make([]string, 0)
	byRegion := make(map[string][]models.Team)
	for _, t := range sorted {
		region := "unknown"
		if t.Region != nil && *t.Region != "" {
			region = *t.Region
		}
		if _, ok := byRegion[region]; !ok {
			order = append(order, region)
		}
		byRegion[region] = append(byRegion[region], t)
	}
	groups := make([][]models.Team, len(order))
	for i, r := range order {
		groups[i] = byRegion[r]
	}
	return interleave(groups)
}

func interleave(groups [][]models.Team) []models.Team {
	out := make([]models.Team, 0)
	for pos := 0; ; pos++ {
		added := false
		for _, g := range groups {
			if pos < len(g) {
				out = append(out, g[pos])
				added = true
			}
		}
		if !added {
			return out
		}
	}
}

// Assignments converts seeded teams into seed rows.
func Assignments(tournamentID int, seeded []models.Team) []models.SeedAssignment {
	out := make([]models.SeedAssignment, len(seeded))
	for i, t := range seeded {
		out[i] = models.SeedAssignment{
			TournamentID: tournamentID,
			TeamID:       t.ID,
			Seed:         i + 1,
			Rating:       t.Rating,
		}
	}
	return out
}

func SeedOrder(assignments []models.SeedAssignment) []int {
	sorted := make([]models.SeedAssignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seed < sorted[j].Seed })
	ids := make([]int, len(sorted))
	for i, sa := range sorted {
		ids[i] = sa.TeamID
	}
	return ids
}
