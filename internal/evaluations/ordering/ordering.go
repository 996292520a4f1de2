// Package ordering plans the order-column rewrites behind drag-and-drop in
// the evaluation editor. Every function is pure: it reads the current links
// and returns the writes that produce the new order, leaving persistence to
// the caller.
package ordering

import (
	"sort"

	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
)

// Labels maps category and subcategory domain ids to their display values.
type Labels map[int64]string

// SortLinks orders links by category, subcategory, then question order.
func SortLinks(links []domain.QuestionLink) []domain.QuestionLink {
	out := make([]domain.QuestionLink, len(links))
	copy(out, links)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CategoryOrder != b.CategoryOrder {
			return a.CategoryOrder < b.CategoryOrder
		}
		if a.SubcategoryOrder != b.SubcategoryOrder {
			return a.SubcategoryOrder < b.SubcategoryOrder
		}
		return a.QuestionOrder < b.QuestionOrder
	})
	return out
}

// MoveCategory moves activeCat to overCat's position and renumbers every
// category 0..N-1. Categories are ranked by the lowest category_order among
// their questions.
func MoveCategory(links []domain.QuestionLink, activeCat, overCat int64) domain.Plan {
	if activeCat == overCat {
		return domain.Plan{}
	}

	groups := rank(SortLinks(links),
		func(l domain.QuestionLink) (int64, bool) { return l.CategoryID, true },
		func(l domain.QuestionLink) int { return l.CategoryOrder },
	)
	reordered, ok := moveKey(groups, activeCat, overCat)
	if !ok {
		return domain.Plan{}
	}

	b := newPlanBuilder()
	for i, g := range reordered {
		for _, l := range g.links {
			if l.CategoryOrder != i {
				b.update(l.LinkID).CategoryOrder = intp(i)
			}
		}
	}
	return b.plan()
}

// MoveSubcategory reorders the subcategories of catID that have questions,
// ranked by their lowest subcategory_order, and renumbers them 0..N-1.
func MoveSubcategory(links []domain.QuestionLink, catID, activeSub, overSub int64) domain.Plan {
	if activeSub == overSub {
		return domain.Plan{}
	}

	groups := rank(SortLinks(links),
		func(l domain.QuestionLink) (int64, bool) {
			if l.CategoryID != catID || l.SubcategoryID == nil {
				return 0, false
			}
			return *l.SubcategoryID, true
		},
		func(l domain.QuestionLink) int { return l.SubcategoryOrder },
	)
	reordered, ok := moveKey(groups, activeSub, overSub)
	if !ok {
		return domain.Plan{}
	}

	b := newPlanBuilder()
	for i, g := range reordered {
		for _, l := range g.links {
			if l.SubcategoryOrder != i {
				b.update(l.LinkID).SubcategoryOrder = intp(i)
			}
		}
	}
	return b.plan()
}

// MoveQuestion drops question activeQ onto question overQ.
//
// Within one container the questions are renumbered 0..N-1 after the move.
// Across containers the question takes over the destination's category and
// subcategory, inherits the order context of overQ, lands right after it,
// and the destination is renumbered.
func MoveQuestion(links []domain.QuestionLink, labels Labels, activeQ, overQ int64) domain.Plan {
	if activeQ == overQ {
		return domain.Plan{}
	}
	sorted := SortLinks(links)
	active, okA := find(sorted, activeQ)
	over, okO := find(sorted, overQ)
	if !okA || !okO {
		return domain.Plan{}
	}

	if active.SameContainer(over) {
		return moveWithinContainer(sorted, active, over)
	}
	return moveAcrossContainers(sorted, labels, active, over)
}

func moveWithinContainer(sorted []domain.QuestionLink, active, over domain.QuestionLink) domain.Plan {
	container := containerOf(sorted, over, 0)
	from, to := indexOf(container, active.ID), indexOf(container, over.ID)
	container = arrayMove(container, from, to)

	b := newPlanBuilder()
	for i, l := range container {
		if l.QuestionOrder != i {
			b.update(l.LinkID).QuestionOrder = intp(i)
		}
	}
	return b.plan()
}

func moveAcrossContainers(sorted []domain.QuestionLink, labels Labels, active, over domain.QuestionLink) domain.Plan {
	category := active.Category
	if v, ok := labels[over.CategoryID]; ok && v != "" {
		category = v
	}
	var subcategory *string
	if over.SubcategoryID != nil {
		if v, ok := labels[*over.SubcategoryID]; ok && v != "" {
			subcategory = &v
		}
	}

	b := newPlanBuilder()
	b.moves = append(b.moves, domain.QuestionMove{
		QuestionID:    active.ID,
		CategoryID:    over.CategoryID,
		SubcategoryID: copyID(over.SubcategoryID),
		Category:      &category,
		Subcategory:   subcategory,
	})

	dest := containerOf(sorted, over, active.ID)
	at := indexOf(dest, over.ID) + 1
	dest = append(dest[:at], append([]domain.QuestionLink{active}, dest[at:]...)...)

	subOrder := 0
	if over.SubcategoryID != nil {
		subOrder = over.SubcategoryOrder
	}
	u := b.update(active.LinkID)
	u.CategoryOrder = intp(over.CategoryOrder)
	u.SubcategoryOrder = intp(subOrder)

	for i, l := range dest {
		if l.ID == active.ID || l.QuestionOrder != i {
			b.update(l.LinkID).QuestionOrder = intp(i)
		}
	}
	return b.plan()
}

// NextOrders positions a new question at the end of its category and
// subcategory, in a category slot after every existing one.
func NextOrders(links []domain.QuestionLink, catID int64, subID *int64) domain.Orders {
	var o domain.Orders
	maxQ, maxC, maxS := -1, -1, -1
	for _, l := range links {
		if l.CategoryOrder > maxC {
			maxC = l.CategoryOrder
		}
		if l.CategoryID == catID && l.QuestionOrder > maxQ {
			maxQ = l.QuestionOrder
		}
		if subID != nil && l.CategoryID == catID && sameSub(l.SubcategoryID, subID) && l.SubcategoryOrder > maxS {
			maxS = l.SubcategoryOrder
		}
	}
	o.Question = maxQ + 1
	o.Category = maxC + 1
	if subID != nil {
		o.Subcategory = maxS + 1
	}
	return o
}

// ManualPlan converts the bulk reorder payload into a plan. Rows without a
// link id only contribute their move, rows without a question id or
// category id only their orders.
func ManualPlan(items []domain.ManualReorderItem) domain.Plan {
	b := newPlanBuilder()
	for _, it := range items {
		if it.LinkID > 0 && (it.CategoryOrder != nil || it.SubcategoryOrder != nil || it.QuestionOrder != nil) {
			u := b.update(it.LinkID)
			if it.CategoryOrder != nil {
				u.CategoryOrder = intp(*it.CategoryOrder)
			}
			if it.SubcategoryOrder != nil {
				u.SubcategoryOrder = intp(*it.SubcategoryOrder)
			}
			if it.QuestionOrder != nil {
				u.QuestionOrder = intp(*it.QuestionOrder)
			}
		}
		if it.QuestionID > 0 && it.CategoryID != nil {
			b.moves = append(b.moves, domain.QuestionMove{
				QuestionID:    it.QuestionID,
				CategoryID:    *it.CategoryID,
				SubcategoryID: copyID(it.SubcategoryID),
				Category:      it.Category,
				Subcategory:   it.Subcategory,
			})
		}
	}
	return b.plan()
}

type group struct {
	key   int64
	min   int
	links []domain.QuestionLink
}

// rank groups links by key and orders the groups by their smallest order
// value, falling back to first appearance.
func rank(sorted []domain.QuestionLink, key func(domain.QuestionLink) (int64, bool), order func(domain.QuestionLink) int) []*group {
	var groups []*group
	byKey := map[int64]*group{}
	for _, l := range sorted {
		k, ok := key(l)
		if !ok {
			continue
		}
		g, found := byKey[k]
		if !found {
			g = &group{key: k, min: order(l)}
			byKey[k] = g
			groups = append(groups, g)
		}
		if o := order(l); o < g.min {
			g.min = o
		}
		g.links = append(g.links, l)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].min < groups[j].min })
	return groups
}

func moveKey(groups []*group, active, over int64) ([]*group, bool) {
	from, to := -1, -1
	for i, g := range groups {
		switch g.key {
		case active:
			from = i
		case over:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, false
	}
	return arrayMove(groups, from, to), true
}

// arrayMove returns a copy of s with the element at from moved to index to.
func arrayMove[T any](s []T, from, to int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	item := s[from]
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// containerOf returns the questions sharing ref's container, ordered by
// question_order, leaving out skipID.
func containerOf(sorted []domain.QuestionLink, ref domain.QuestionLink, skipID int64) []domain.QuestionLink {
	var out []domain.QuestionLink
	for _, l := range sorted {
		if l.ID != skipID && l.SameContainer(ref) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuestionOrder < out[j].QuestionOrder })
	return out
}

func find(links []domain.QuestionLink, id int64) (domain.QuestionLink, bool) {
	for _, l := range links {
		if l.ID == id {
			return l, true
		}
	}
	return domain.QuestionLink{}, false
}

func indexOf(links []domain.QuestionLink, id int64) int {
	for i, l := range links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func sameSub(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intp(v int) *int { return &v }

// planBuilder merges writes per link row while keeping first-touch order.
type planBuilder struct {
	order   []int64
	updates map[int64]*domain.OrderUpdate
	moves   []domain.QuestionMove
}

func newPlanBuilder() *planBuilder {
	return &planBuilder{updates: map[int64]*domain.OrderUpdate{}}
}

func (b *planBuilder) update(linkID int64) *domain.OrderUpdate {
	u, ok := b.updates[linkID]
	if !ok {
		u = &domain.OrderUpdate{LinkID: linkID}
		b.updates[linkID] = u
		b.order = append(b.order, linkID)
	}
	return u
}

func (b *planBuilder) plan() domain.Plan {
	var p domain.Plan
	for _, id := range b.order {
		p.Updates = append(p.Updates, *b.updates[id])
	}
	p.Moves = b.moves
	return p
}
