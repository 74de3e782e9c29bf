// Package analytics folds normalized threads into the conversation
// statistics of a scope.
package analytics

import (
	"voicero/internal/actions"
	"voicero/internal/catalog"
	"voicero/internal/purchases"
	"voicero/internal/redirects"
	"voicero/internal/threads"
)

// Stats is the aggregate of one scope. Field names follow the cached JSON
// consumed by the dashboard.
type Stats struct {
	TotalThreads     int                `json:"totalThreads"`
	TotalMessages    int                `json:"totalMessages"`
	TotalVoiceChats  int                `json:"totalVoiceChats"`
	TotalTextChats   int                `json:"totalTextChats"`
	TotalAiRedirects int                `json:"totalAiRedirects"`
	TotalAiScrolls   int                `json:"totalAiScrolls"`
	TotalAiPurchases int                `json:"totalAiPurchases"`
	TotalAiClicks    int                `json:"totalAiClicks"`
	ActionKinds      map[string]int     `json:"actionKinds"`
	Cart             []actions.Action   `json:"cart"`
	Movement         []actions.Action   `json:"movement"`
	Orders           []actions.Action   `json:"orders"`
	Redirects        redirects.Summary  `json:"redirects"`
	Revenue          purchases.Revenue  `json:"revenue"`
	Purchases        []purchases.Record `json:"purchases"`
}

// Accumulator folds messages into Stats. It holds no package state, so one
// Accumulator per scope (or per bucket) can be built independently.
type Accumulator struct {
	threads  map[string]struct{}
	voice    map[string]struct{}
	text     map[string]struct{}
	messages int

	scrolls   int
	clicks    int
	purchases int
	kinds     map[string]int

	cart     []actions.Action
	movement []actions.Action
	orders   []actions.Action

	redirects  *redirects.Tally
	attributor *purchases.Attributor
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		threads:    make(map[string]struct{}),
		voice:      make(map[string]struct{}),
		text:       make(map[string]struct{}),
		kinds:      make(map[string]int),
		cart:       []actions.Action{},
		movement:   []actions.Action{},
		orders:     []actions.Action{},
		redirects:  redirects.NewTally(),
		attributor: purchases.NewAttributor(),
	}
}

// AddThread folds every message of t.
func (a *Accumulator) AddThread(t threads.Thread) {
	for _, m := range t.Messages {
		a.AddMessage(t, m)
	}
}

// AddMessage folds a single message of t. A thread counts toward the voice
// or text total once it has a user message of that type; a thread with both
// counts toward both.
func (a *Accumulator) AddMessage(t threads.Thread, m threads.Message) {
	key := t.Key()
	a.threads[key] = struct{}{}
	a.messages++

	if m.Role == threads.RoleUser {
		switch m.Type {
		case threads.TypeVoice:
			a.voice[key] = struct{}{}
		case threads.TypeText:
			a.text[key] = struct{}{}
		}
		return
	}

	c := actions.Classify(t, m)

	for _, url := range c.Redirects {
		a.redirects.Record(key, url)
	}
	a.scrolls += c.Scrolls
	a.clicks += c.Clicks
	a.purchases += c.Purchases

	for _, action := range c.Actions {
		a.kinds[action.Kind]++
		switch action.Category {
		case actions.CategoryCart:
			a.cart = append(a.cart, action)
		case actions.CategoryMovement:
			a.movement = append(a.movement, action)
		case actions.CategoryOrders:
			a.orders = append(a.orders, action)
		}
	}
	for _, ref := range c.Products {
		a.attributor.Record(key, m.ID, ref, m.CreatedAt)
	}
}

// Threads returns the number of distinct threads folded so far.
func (a *Accumulator) Threads() int {
	return len(a.threads)
}

// Stats finalizes the fold, pricing purchases against index. index may be nil.
func (a *Accumulator) Stats(index *catalog.PriceIndex) Stats {
	kinds := make(map[string]int, len(a.kinds))
	for k, v := range a.kinds {
		kinds[k] = v
	}

	return Stats{
		TotalThreads:     len(a.threads),
		TotalMessages:    a.messages,
		TotalVoiceChats:  len(a.voice),
		TotalTextChats:   len(a.text),
		TotalAiRedirects: a.redirects.Total(),
		TotalAiScrolls:   a.scrolls,
		TotalAiPurchases: a.purchases,
		TotalAiClicks:    a.clicks,
		ActionKinds:      kinds,
		Cart:             append([]actions.Action{}, a.cart...),
		Movement:         append([]actions.Action{}, a.movement...),
		Orders:           append([]actions.Action{}, a.orders...),
		Redirects:        a.redirects.Summary(),
		Revenue:          a.attributor.Rollup(index, len(a.threads)),
		Purchases:        a.attributor.Log(),
	}
}

// Aggregate folds a whole scope.
func Aggregate(ts []threads.Thread, index *catalog.PriceIndex) Stats {
	acc := NewAccumulator()
	for _, t := range ts {
		acc.AddThread(t)
	}
	return acc.Stats(index)
}
