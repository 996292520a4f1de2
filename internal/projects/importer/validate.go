package importer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	domains "github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Catalog resolves project names and phase values case-insensitively.
type Catalog struct {
	projects   map[string]int64
	phases     map[string]int64
	phaseNames []string
}

func NewCatalog(projects []domain.Project, phases []domains.Domain) Catalog {
	c := Catalog{
		projects: make(map[string]int64, len(projects)),
		phases:   make(map[string]int64, len(phases)),
	}
	for _, p := range projects {
		c.projects[key(p.Name)] = p.ID
	}
	for _, p := range phases {
		k := key(p.Value)
		if _, dup := c.phases[k]; !dup {
			c.phaseNames = append(c.phaseNames, k)
		}
		c.phases[k] = p.ID
	}
	sort.Strings(c.phaseNames)
	return c
}

// Validate converts rows into phase progress records. Rows that fail a
// check are reported and left out; the rest are returned in file order.
func Validate(rows []Row, cat Catalog) ([]domain.PhaseProgress, []domain.RowError) {
	var (
		out        []domain.PhaseProgress
		errs       []domain.RowError
		seenPhases = map[string]map[int64]bool{}
		seenOrders = map[string]map[int]bool{}
	)
	fail := func(r Row, format string, args ...any) {
		errs = append(errs, domain.RowError{Row: r.Line, Message: fmt.Sprintf(format, args...)})
	}

	for _, r := range rows {
		if r.Project == "" {
			fail(r, "project name is missing")
			continue
		}
		if r.Phase == "" {
			fail(r, "phase is missing")
			continue
		}
		order, err := strconv.Atoi(r.Order)
		if err != nil || order <= 0 {
			fail(r, "invalid order %q", r.Order)
			continue
		}
		week, err := strconv.Atoi(r.Week)
		if err != nil || week <= 0 {
			fail(r, "invalid week %q", r.Week)
			continue
		}
		progress, err := percent(r.Progress)
		if err != nil {
			fail(r, "invalid progress %q", r.Progress)
			continue
		}
		expected, err := percent(r.Expected)
		if err != nil {
			fail(r, "invalid expected progress %q", r.Expected)
			continue
		}

		projectID, ok := cat.projects[key(r.Project)]
		if !ok {
			fail(r, "project %q not found", r.Project)
			continue
		}
		phaseID, ok := cat.phases[key(r.Phase)]
		if !ok {
			if hint, found := cat.similarPhase(r.Phase); found {
				fail(r, "phase %q not found, did you mean %q? (accent mismatch)", r.Phase, hint)
			} else {
				fail(r, "phase %q not found, valid phases: %s", r.Phase, strings.Join(cat.phaseNames, ", "))
			}
			continue
		}

		period := fmt.Sprintf("%d_%d", week, projectID)
		if seenPhases[period] == nil {
			seenPhases[period] = map[int64]bool{}
			seenOrders[period] = map[int]bool{}
		}
		if seenPhases[period][phaseID] {
			fail(r, "phase %q duplicated in week %d for project %q", r.Phase, week, r.Project)
			continue
		}
		if seenOrders[period][order] {
			fail(r, "order %d duplicated in week %d for project %q", order, week, r.Project)
			continue
		}
		seenPhases[period][phaseID] = true
		seenOrders[period][order] = true

		out = append(out, domain.PhaseProgress{
			ProjectID:        projectID,
			DomainID:         phaseID,
			Progress:         progress,
			ExpectedProgress: expected,
			Order:            order,
			Period:           week,
		})
	}
	return out, errs
}

func (c Catalog) similarPhase(name string) (string, bool) {
	want := fold(key(name))
	for _, p := range c.phaseNames {
		if fold(p) == want {
			return p, true
		}
	}
	return "", false
}

// percent parses a progress cell, accepting a decimal comma, and clamps it
// to [0, 100]. An empty cell is 0.
func percent(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, strconv.ErrSyntax
	}
	return min(100, max(0, v)), nil
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// fold strips diacritics: "Homologação" becomes "Homologacao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
