// Package actions derives categorized actions from assistant messages.
//
// Classification is layered. Structured action columns are read first, then a
// JSON payload in the content, then a pattern scan of the raw text. Every
// layer degrades quietly: malformed input produces no actions, never an error.
package actions

import (
	"strings"
	"time"

	"voicero/internal/purchases"
	"voicero/internal/threads"
)

// Category groups action kinds for drill-down views.
type Category string

const (
	CategoryMovement Category = "movement"
	CategoryCart     Category = "cart"
	CategoryOrders   Category = "orders"
)

const (
	KindScroll    = "scroll"
	KindClick     = "click"
	KindNavigate  = "navigate"
	KindRedirect  = "redirect"
	KindPurchase  = "purchase"
	KindAddToCart = "add_to_cart"

	// actionTrue is stored in the action column when the verb lives in actionType.
	actionTrue = "true"
)

// Action is one categorized action found in an assistant message.
type Action struct {
	Category     Category           `json:"category"`
	Kind         string             `json:"kind"`
	ThreadID     string             `json:"threadId"`
	SourceKind   threads.SourceKind `json:"sourceKind"`
	MessageID    string             `json:"messageId"`
	CreatedAt    time.Time          `json:"createdAt"`
	URL          string             `json:"url,omitempty"`
	ScrollToText string             `json:"scrollToText,omitempty"`
	OrderID      string             `json:"orderId,omitempty"`
	Product      *purchases.Ref     `json:"product,omitempty"`
}

// Classification is everything detected in one message.
type Classification struct {
	Actions   []Action
	Redirects []string
	Scrolls   int
	Clicks    int
	Purchases int
	Products  []purchases.Ref
}

// Signals counts every tally the message contributed to.
func (c Classification) Signals() int {
	return len(c.Actions) + len(c.Redirects) + c.Scrolls + c.Clicks + c.Purchases
}

// Classify inspects one message of thread t. Only assistant messages carry
// actions; user messages always yield an empty Classification.
func Classify(t threads.Thread, m threads.Message) Classification {
	var out Classification
	if !m.IsAssistant() {
		return out
	}

	c := classifier{vocab: getVocabulary(), thread: t, message: m, out: &out}

	if m.HasStructuredAction() {
		c.structured()
		if out.Signals() > 0 {
			return out
		}
	}

	if payload, ok := TryParseJSON(m.Content); ok {
		c.payload(payload)
		return out
	}

	c.fallback()
	return out
}

type classifier struct {
	vocab   *vocabulary
	thread  threads.Thread
	message threads.Message
	out     *Classification
}

// structured reads the action/actionType columns of text and voice rows.
func (c *classifier) structured() {
	action := c.vocab.canonical(c.message.Action)
	actionType := strings.TrimSpace(c.message.ActionType)

	verb := action
	if action == actionTrue {
		verb = c.vocab.canonical(actionType)
	}

	switch cat, _ := c.vocab.category(verb); cat {
	case CategoryCart:
		a := c.newAction(CategoryCart, verb)
		if verb == KindAddToCart {
			ref := productRefFromActionType(actionType)
			a.Product = &ref
			c.purchase(ref)
		}
		c.out.Actions = append(c.out.Actions, a)
		return
	case CategoryOrders:
		c.out.Actions = append(c.out.Actions, c.newAction(CategoryOrders, verb))
		return
	}

	if cat, ok := c.vocab.category(actionType); ok && cat == CategoryMovement {
		c.movement(c.vocab.canonical(actionType), nil)
		return
	}
	if cat, ok := c.vocab.category(action); ok && cat == CategoryMovement {
		c.movement(action, nil)
	}
}

// payload reads a JSON action document found in the content.
func (c *classifier) payload(p map[string]any) {
	verb := c.vocab.canonical(stringField(p, "action"))
	detail := detailOf(p)

	switch verb {
	case "":
		if url := stringField(p, "url", "redirect_url"); url != "" {
			c.out.Redirects = append(c.out.Redirects, url)
		}
		return
	case KindRedirect:
		url := stringField(objectField(p, "action_context"), "url")
		if url == "" {
			url = stringField(p, "url", "redirect_url")
		}
		if url != "" {
			c.out.Redirects = append(c.out.Redirects, url)
		}
		return
	case KindPurchase:
		c.purchase(productRef(detail))
		return
	}

	cat, ok := c.vocab.category(verb)
	if !ok {
		return
	}
	switch cat {
	case CategoryMovement:
		c.movement(verb, detail)
	case CategoryCart:
		a := c.newAction(CategoryCart, verb)
		if verb == KindAddToCart {
			ref := productRef(detail)
			a.Product = &ref
			c.purchase(ref)
		}
		c.out.Actions = append(c.out.Actions, a)
	case CategoryOrders:
		a := c.newAction(CategoryOrders, verb)
		a.OrderID = stringField(detail, "order_id", "order_number")
		c.out.Actions = append(c.out.Actions, a)
	}
}

// fallback scans raw text that was not a JSON document. Each action type
// counts at most once per message however often it appears.
func (c *classifier) fallback() {
	p := getPatterns()
	if p == nil {
		return
	}
	content := c.message.Content

	if p.scroll.MatchString(content) {
		c.movement(KindScroll, nil)
	}
	if p.click.MatchString(content) {
		c.movement(KindClick, nil)
	}
	if p.purchase.MatchString(content) {
		c.purchase(bestEffortRef(p, content))
	}
}

func (c *classifier) movement(kind string, detail map[string]any) {
	if kind == KindScroll {
		c.out.Scrolls++
	} else {
		c.out.Clicks++
	}

	a := c.newAction(CategoryMovement, kind)
	a.URL = c.message.PageURL
	a.ScrollToText = c.message.ScrollToText
	if detail != nil {
		if url := stringField(detail, "url"); url != "" {
			a.URL = url
		}
		if text := stringField(detail, "scroll_to_text", "text"); text != "" {
			a.ScrollToText = text
		}
	}
	c.out.Actions = append(c.out.Actions, a)
}

func (c *classifier) purchase(ref purchases.Ref) {
	c.out.Purchases++
	c.out.Products = append(c.out.Products, ref)
}

func (c *classifier) newAction(category Category, kind string) Action {
	if kind == "" {
		kind = KindNavigate
	}
	return Action{
		Category:   category,
		Kind:       kind,
		ThreadID:   c.thread.ID,
		SourceKind: c.thread.SourceKind,
		MessageID:  c.message.ID,
		CreatedAt:  c.message.CreatedAt,
	}
}

// bestEffortRef pulls purchase identifiers out of prose: a repaired JSON
// fragment when one parses, and the first product-looking URL otherwise.
func bestEffortRef(p *patterns, content string) purchases.Ref {
	var ref purchases.Ref
	if payload, ok := RepairJSON(content); ok {
		ref = productRef(detailOf(payload))
	}
	if ref.URL == "" {
		if m := p.url.FindStringSubmatch(content); len(m) > 0 {
			ref.URL = strings.TrimRight(m[0], ".,;")
		}
	}
	return ref
}
