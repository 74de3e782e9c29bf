package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"voicero/internal/catalog"
	"voicero/internal/conversations"
	"voicero/internal/models"
	"voicero/internal/websites"
)

// Seeder fills a database with demo stores and conversations in every
// stored shape, for local runs of the dashboard and the refresher.
type Seeder struct {
	DBManager         cartridge.DBManager
	Logger            *slog.Logger
	ConversationCount int
	rng               *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, conversationCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:         dbManager,
		Logger:            logger,
		ConversationCount: conversationCount,
		rng:               rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 42)),
	}
}

// WithSeed makes the generated data reproducible.
func (s *Seeder) WithSeed(seed uint64) *Seeder {
	s.rng = rand.New(rand.NewPCG(seed, seed))
	return s
}

var demoSites = []struct {
	domain   string
	platform websites.Platform
}{
	{"demo-shop.com", websites.PlatformShopify},
	{"demo-blog.com", websites.PlatformWordPress},
}

var demoProducts = []catalog.Item{
	{Handle: "red-shoe", Title: "Red Shoe", Price: 80},
	{Handle: "blue-hat", Title: "Blue Hat", Price: 25},
	{Handle: "green-scarf", Title: "Green Scarf", Price: 15},
	{Handle: "leather-bag", Title: "Leather Bag", Price: 120.5},
}

// assistantTurn is one canned assistant reply. Action and ActionType only
// apply to the text and voice shapes.
type assistantTurn struct {
	content    string
	action     string
	actionType string
	pageURL    string
	scrollTo   string
}

var visitorLines = []string{
	"Do you have red shoes?",
	"Where can I read about shipping?",
	"Add the blue hat to my cart please",
	"Where is my order?",
	"Show me the scarves",
	"Tell me about returns",
}

var assistantTurns = []assistantTurn{
	{content: "```json\n{\"action\":\"redirect\",\"action_context\":{\"url\":\"https://demo-shop.com/products/red-shoe/\"}}\n```"},
	{content: `{"action":"redirect","action_context":{"url":"/blogs/news/shipping-times"}}`},
	{content: "Added it!", action: "add_to_cart", actionType: `{"handle":"blue-hat","product_name":"Blue Hat"}`},
	{content: "Let me check.", action: "true", actionType: "track_order"},
	{content: "Scrolling to the scarves", action: "scroll", scrollTo: "Green Scarf"},
	{content: `{"redirect_url":"https://demo-shop.com/pages/returns"}`},
	{content: `I added it. {"action":"purchase","action_context":{"product_name":"Leather Bag"`},
	{content: "Sure, here is the collection", pageURL: "https://demo-shop.com/collections/scarves"},
}

// Run executes the seeding process
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Starting database seeding...", slog.Int("conversationCount", s.ConversationCount))

	sites, err := s.seedWebsites()
	if err != nil {
		return fmt.Errorf("failed to seed websites: %w", err)
	}

	for _, website := range sites {
		if err := s.seedCatalog(website); err != nil {
			return fmt.Errorf("failed to seed catalog for %s: %w", website.Domain, err)
		}
		s.Logger.Info("Generating conversations for website", slog.String("domain", website.Domain))
		if err := s.generateConversations(ctx, website, s.ConversationCount/len(sites)); err != nil {
			return fmt.Errorf("failed to generate conversations for %s: %w", website.Domain, err)
		}
	}

	s.Logger.Info("Seeding completed successfully", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// SeedDomain seeds a specific existing domain with conversations
func (s *Seeder) SeedDomain(ctx context.Context, domain string) error {
	website, err := websites.GetWebsiteByDomain(s.DBManager.GetConnection(), domain)
	if err != nil {
		return err
	}
	if err := s.seedCatalog(website); err != nil {
		return fmt.Errorf("failed to seed catalog for %s: %w", website.Domain, err)
	}
	return s.generateConversations(ctx, website, s.ConversationCount)
}

// seedWebsites creates the demo websites unless they already exist
func (s *Seeder) seedWebsites() ([]*websites.Website, error) {
	var websiteList []*websites.Website
	db := s.DBManager.GetConnection()

	for _, site := range demoSites {
		website, err := websites.GetWebsiteByDomain(db, site.domain)
		if err == nil {
			s.Logger.Info("Website already exists", slog.String("domain", website.Domain))
			websiteList = append(websiteList, website)
			continue
		}
		var notFound *websites.WebsiteNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}

		website = &websites.Website{Domain: site.domain, Platform: site.platform}
		err = models.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
			return websites.CreateWebsite(tx, website)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create website %s: %w", site.domain, err)
		}

		s.Logger.Info("Website created successfully", slog.Uint64("id", uint64(website.ID)), slog.String("domain", website.Domain))
		websiteList = append(websiteList, website)
	}

	return websiteList, nil
}

func (s *Seeder) seedCatalog(website *websites.Website) error {
	db := s.DBManager.GetConnection()

	var count int64
	if err := db.Model(&catalog.Product{}).Where("website_id = ?", website.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	products := make([]catalog.Product, 0, len(demoProducts))
	for i, item := range demoProducts {
		products = append(products, catalog.Product{
			ID:        uuid.NewString(),
			WebsiteID: website.ID,
			Handle:    item.Handle,
			Title:     item.Title,
			Price:     item.Price,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now,
		})
	}

	return models.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
}

func (s *Seeder) generateConversations(ctx context.Context, website *websites.Website, count int) error {
	if count < 3 {
		count = 3
	}
	db := s.DBManager.GetConnection()

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		startedAt := time.Now().UTC().Add(-time.Duration(s.rng.IntN(30*24*60*60)) * time.Second)
		turns := 1 + s.rng.IntN(4)

		var err error
		switch i % 3 {
		case 0:
			err = models.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
				return tx.Create(s.textConversation(website.ID, startedAt, turns)).Error
			})
		case 1:
			err = models.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
				return tx.Create(s.voiceConversation(website.ID, startedAt, turns)).Error
			})
		default:
			err = models.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
				return tx.Create(s.aiThread(website.ID, startedAt, turns)).Error
			})
		}
		if err != nil {
			return err
		}
	}

	s.Logger.Info("Conversations generated", slog.String("domain", website.Domain), slog.Int("count", count))
	return nil
}

func (s *Seeder) pick() (string, assistantTurn) {
	return visitorLines[s.rng.IntN(len(visitorLines))], assistantTurns[s.rng.IntN(len(assistantTurns))]
}

func (s *Seeder) textConversation(websiteID uint, startedAt time.Time, turns int) *conversations.TextConversation {
	c := &conversations.TextConversation{ID: uuid.NewString(), WebsiteID: websiteID, CreatedAt: startedAt}
	at := startedAt
	for i := 0; i < turns; i++ {
		line, reply := s.pick()
		c.Chats = append(c.Chats,
			conversations.TextChat{ID: uuid.NewString(), ConversationID: c.ID, MessageType: conversations.MessageTypeUser, Content: line, CreatedAt: at},
			conversations.TextChat{ID: uuid.NewString(), ConversationID: c.ID, MessageType: "ai", Content: reply.content,
				Action: optional(reply.action), ActionType: optional(reply.actionType), CreatedAt: at.Add(5 * time.Second)},
		)
		at = at.Add(time.Minute)
	}
	last := at
	c.MostRecentConversationAt = &last
	return c
}

func (s *Seeder) voiceConversation(websiteID uint, startedAt time.Time, turns int) *conversations.VoiceConversation {
	c := &conversations.VoiceConversation{ID: uuid.NewString(), WebsiteID: websiteID, CreatedAt: startedAt}
	at := startedAt
	for i := 0; i < turns; i++ {
		line, reply := s.pick()
		c.Chats = append(c.Chats,
			conversations.VoiceChat{ID: uuid.NewString(), ConversationID: c.ID, MessageType: conversations.MessageTypeUser, Content: line, CreatedAt: at},
			conversations.VoiceChat{ID: uuid.NewString(), ConversationID: c.ID, MessageType: "ai", Content: reply.content,
				Action: optional(reply.action), ActionType: optional(reply.actionType), CreatedAt: at.Add(5 * time.Second)},
		)
		at = at.Add(time.Minute)
	}
	last := at
	c.MostRecentConversationAt = &last
	return c
}

func (s *Seeder) aiThread(websiteID uint, startedAt time.Time, turns int) *conversations.AiThread {
	t := &conversations.AiThread{ID: uuid.NewString(), WebsiteID: websiteID, Title: "Demo thread", CreatedAt: startedAt}
	at := startedAt
	for i := 0; i < turns; i++ {
		line, reply := s.pick()
		userType := "text"
		if s.rng.IntN(2) == 0 {
			userType = "voice"
		}
		t.Messages = append(t.Messages,
			conversations.AiMessage{ID: uuid.NewString(), ThreadID: t.ID, Role: "user", Content: line, Type: &userType, CreatedAt: at},
			conversations.AiMessage{ID: uuid.NewString(), ThreadID: t.ID, Role: "assistant", Content: reply.content,
				PageURL: optional(reply.pageURL), ScrollToText: optional(reply.scrollTo), CreatedAt: at.Add(5 * time.Second)},
		)
		at = at.Add(time.Minute)
	}
	last := at
	t.LastMessageAt = &last
	return t
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
