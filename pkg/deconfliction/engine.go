package deconfliction

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/pkg/units"
	"fmt"
	"math"
	"sort"
	"strings"
)

type (
	State string

	// ConflictGroup holds every request for one food item and, when the
	// requests could be combined, the single merged line.
	ConflictGroup struct {
		FoodItemID string
		Entries    []domain.CandidateRequest
		State      State
		Merged     *domain.ListItem
	}

	Result struct {
		Groups []ConflictGroup
	}

	Engine interface {
		// Deconflict groups requests by food item and merges or flags each
		// group. preferredUnits maps a food item id to its display unit and
		// may be nil.
		Deconflict(requests []domain.CandidateRequest, preferredUnits map[string]string) (Result, error)
	}

	engine struct {
		table units.ConversionTable
	}
)

const (
	StateMerged     State = domain.ConflictStateMerged
	StateUnresolved State = domain.ConflictStateUnresolved

	quantityPrecision = 1000
)

func NewEngine(table units.ConversionTable) Engine {
	if table == nil {
		table = units.Default()
	}
	return &engine{table: table}
}

func (e *engine) Deconflict(requests []domain.CandidateRequest, preferredUnits map[string]string) (Result, error) {
	order := make([]string, 0)
	grouped := make(map[string][]domain.CandidateRequest)

	for i, req := range requests {
		if strings.TrimSpace(req.FoodItemID) == "" {
			return Result{}, fmt.Errorf("candidate %d: %w", i, domain.ErrInvalidFoodItem)
		}
		if req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
			return Result{}, fmt.Errorf("candidate %d (%s): %w", i, req.FoodItemID, domain.ErrInvalidQuantity)
		}
		if _, seen := grouped[req.FoodItemID]; !seen {
			order = append(order, req.FoodItemID)
		}
		grouped[req.FoodItemID] = append(grouped[req.FoodItemID], req)
	}

	result := Result{Groups: make([]ConflictGroup, 0, len(order))}
	for _, id := range order {
		result.Groups = append(result.Groups, e.resolveGroup(id, grouped[id], preferredUnits[id]))
	}
	return result, nil
}

func (e *engine) resolveGroup(foodItemID string, entries []domain.CandidateRequest, preferredUnit string) ConflictGroup {
	group := ConflictGroup{FoodItemID: foodItemID, Entries: entries}

	if len(entries) == 1 {
		only := entries[0]
		group.State = StateMerged
		group.Merged = &domain.ListItem{
			FoodItemID: only.FoodItemID,
			Name:       only.Name,
			Quantity:   only.Quantity,
			Unit:       only.Unit,
		}
		return group
	}

	// any incompatible pair, even in a partially convertible group, leaves
	// the decision to the user
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if !e.table.Compatible(entries[i].Unit, entries[j].Unit) {
				group.State = StateUnresolved
				return group
			}
		}
	}

	display := e.displayUnit(entries, preferredUnit)
	converted := make([]float64, 0, len(entries))
	for _, entry := range entries {
		q, _ := e.table.Convert(entry.Quantity, entry.Unit, display)
		converted = append(converted, q)
	}
	// summing in sorted order keeps the total independent of input order
	sort.Float64s(converted)
	var total float64
	for _, q := range converted {
		total += q
	}

	group.State = StateMerged
	group.Merged = &domain.ListItem{
		FoodItemID: foodItemID,
		Name:       firstName(entries),
		Quantity:   roundQuantity(total),
		Unit:       display,
	}
	return group
}

// displayUnit picks the configured unit when it fits the group, otherwise the
// unit of the largest single request. Ties go to the alphabetically first
// canonical unit so the choice never depends on input order.
func (e *engine) displayUnit(entries []domain.CandidateRequest, preferredUnit string) string {
	if preferredUnit != "" && e.table.Compatible(preferredUnit, entries[0].Unit) {
		return e.table.Normalize(preferredUnit)
	}

	best := e.table.Normalize(entries[0].Unit)
	bestSize, hasBase := e.table.ToBase(entries[0].Quantity, entries[0].Unit)
	if !hasBase {
		// counts and unknown units only merge when identical
		return best
	}
	for _, entry := range entries[1:] {
		size, _ := e.table.ToBase(entry.Quantity, entry.Unit)
		unit := e.table.Normalize(entry.Unit)
		if size > bestSize || (size == bestSize && unit < best) {
			best, bestSize = unit, size
		}
	}
	return best
}

func firstName(entries []domain.CandidateRequest) string {
	for _, entry := range entries {
		if entry.Name != "" {
			return entry.Name
		}
	}
	return ""
}

// roundQuantity trims float noise to three decimals. A positive amount too
// small to survive that is kept as is.
func roundQuantity(q float64) float64 {
	rounded := math.Round(q*quantityPrecision) / quantityPrecision
	if rounded <= 0 && q > 0 {
		return q
	}
	return rounded
}

// MergedItems returns one list line per merged group, in group order.
func (r Result) MergedItems() []domain.ListItem {
	items := make([]domain.ListItem, 0, len(r.Groups))
	for _, group := range r.Groups {
		if group.State == StateMerged && group.Merged != nil {
			items = append(items, *group.Merged)
		}
	}
	return items
}

// Conflicts returns the groups that need a human decision.
func (r Result) Conflicts() []ConflictGroup {
	conflicts := make([]ConflictGroup, 0)
	for _, group := range r.Groups {
		if group.State == StateUnresolved {
			conflicts = append(conflicts, group)
		}
	}
	return conflicts
}

// Candidates yields one tagged line per original request of an unresolved
// group, with quantities exactly as requested.
func (g ConflictGroup) Candidates() []domain.ConflictEntry {
	entries := make([]domain.ConflictEntry, 0, len(g.Entries))
	for _, entry := range g.Entries {
		entries = append(entries, domain.ConflictEntry{
			FoodItemID: entry.FoodItemID,
			Name:       entry.Name,
			Quantity:   entry.Quantity,
			Unit:       entry.Unit,
			SourceID:   entry.SourceID,
			Conflict:   g.State == StateUnresolved,
		})
	}
	return entries
}

func (g ConflictGroup) Response() domain.ConflictGroupResponse {
	return domain.ConflictGroupResponse{
		FoodItemID: g.FoodItemID,
		State:      string(g.State),
		Entries:    g.Candidates(),
	}
}

// ContainsSource reports whether any request in the group came from sourceID.
func (g ConflictGroup) ContainsSource(sourceID string) bool {
	for _, entry := range g.Entries {
		if entry.SourceID == sourceID {
			return true
		}
	}
	return false
}
