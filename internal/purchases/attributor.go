package purchases

import (
	"math"
	"sort"
	"strings"
	"time"

	"voicero/internal/catalog"
	"voicero/internal/redirects"
)

// Record is one raw purchase event kept for auditing.
type Record struct {
	ThreadKey string    `json:"threadKey"`
	MessageID string    `json:"messageId"`
	Key       string    `json:"key"`
	Ref       Ref       `json:"ref"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attributor collects purchase keys per thread for one scope. Repeated keys
// within a thread are kept once; every event still lands in the log.
type Attributor struct {
	order []string
	keys  map[string][]string
	seen  map[string]map[string]struct{}
	log   []Record
}

// NewAttributor returns an empty Attributor.
func NewAttributor() *Attributor {
	return &Attributor{
		keys: make(map[string][]string),
		seen: make(map[string]map[string]struct{}),
	}
}

// Record attributes one purchase event to a thread and returns its key.
func (a *Attributor) Record(threadKey, messageID string, ref Ref, at time.Time) string {
	key := ref.Key()

	a.log = append(a.log, Record{
		ThreadKey: threadKey,
		MessageID: messageID,
		Key:       key,
		Ref:       ref,
		CreatedAt: at,
	})

	set, ok := a.seen[threadKey]
	if !ok {
		set = make(map[string]struct{})
		a.seen[threadKey] = set
		a.order = append(a.order, threadKey)
	}
	if _, dup := set[key]; !dup {
		set[key] = struct{}{}
		a.keys[threadKey] = append(a.keys[threadKey], key)
	}
	return key
}

// Threads returns the number of threads with at least one purchase.
func (a *Attributor) Threads() int {
	return len(a.order)
}

// Log returns the raw purchase events in the order they were recorded.
func (a *Attributor) Log() []Record {
	out := make([]Record, len(a.log))
	copy(out, a.log)
	return out
}

// Breakdown describes how many threads purchased.
type Breakdown struct {
	Threads               int `json:"threads"`
	PercentOfTotalThreads int `json:"percent_of_total_threads"`
}

// ItemRevenue is the contribution of one purchase key.
type ItemRevenue struct {
	Key      string  `json:"key"`
	Resolved bool    `json:"resolved"`
	Price    float64 `json:"price"`
	Threads  int     `json:"threads"`
	Revenue  float64 `json:"revenue"`
}

// Revenue is the estimated revenue of a scope.
type Revenue struct {
	Amount    float64       `json:"amount"`
	Breakdown Breakdown     `json:"breakdown"`
	AOV       float64       `json:"aov"`
	Items     []ItemRevenue `json:"items"`
}

// Rollup prices every thread-level key against the catalog. Keys that do not
// resolve add nothing to the amount but the thread still counts as
// purchasing. totalThreads is the number of threads in the scope.
func (a *Attributor) Rollup(index *catalog.PriceIndex, totalThreads int) Revenue {
	items := make(map[string]*ItemRevenue)
	amount := 0.0

	for _, threadKey := range a.order {
		for _, key := range a.keys[threadKey] {
			item, ok := items[key]
			if !ok {
				price, resolved := Resolve(index, key)
				item = &ItemRevenue{Key: key, Resolved: resolved, Price: price}
				items[key] = item
			}
			item.Threads++
			if item.Resolved {
				item.Revenue += item.Price
				amount += item.Price
			}
		}
	}

	threads := a.Threads()
	rev := Revenue{
		Amount: round2(amount),
		Breakdown: Breakdown{
			Threads: threads,
		},
		Items: make([]ItemRevenue, 0, len(items)),
	}
	if totalThreads > 0 {
		rev.Breakdown.PercentOfTotalThreads = int(math.Round(float64(threads) / float64(totalThreads) * 100))
	}
	if threads > 0 {
		rev.AOV = round2(amount / float64(threads))
	}

	for _, item := range items {
		item.Revenue = round2(item.Revenue)
		rev.Items = append(rev.Items, *item)
	}
	sort.Slice(rev.Items, func(i, j int) bool {
		if rev.Items[i].Revenue != rev.Items[j].Revenue {
			return rev.Items[i].Revenue > rev.Items[j].Revenue
		}
		return rev.Items[i].Key < rev.Items[j].Key
	})

	return rev
}

// Resolve finds the price of a purchase key. Path-like keys are reduced to
// their handle first. Otherwise the key is tried as a handle, a product id
// and a normalized title, in that order.
func Resolve(index *catalog.PriceIndex, key string) (float64, bool) {
	if key == "" || key == UnknownKey {
		return 0, false
	}

	if looksLikePath(key) {
		if handle := handleFromPath(key); handle != "" {
			if price, ok := index.ByHandle(handle); ok {
				return price, true
			}
		}
	}
	if price, ok := index.ByHandle(key); ok {
		return price, true
	}
	if price, ok := index.ByID(key); ok {
		return price, true
	}
	return index.ByTitle(key)
}

func looksLikePath(key string) bool {
	return strings.HasPrefix(key, "/") || strings.Contains(key, "://")
}

func handleFromPath(key string) string {
	path := redirects.NormalizePath(key)
	if _, handle, ok := redirects.Bucket(path); ok {
		return handle
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
