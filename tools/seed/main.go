// Seeds the database with sample users, articles and comments.
//
// Usage: go run ./tools/seed [-articles N] [-comments N]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/wstorey/web615-lab9/config"
	"github.com/wstorey/web615-lab9/internal/auth"
	"github.com/wstorey/web615-lab9/internal/models"
	"github.com/wstorey/web615-lab9/internal/storage"
	"github.com/wstorey/web615-lab9/internal/utils"
)

const seedPassword = "test1234"

var companies = []string{
	"Initech", "Globex", "Umbrella Corp", "Hooli", "Vandelay Industries",
	"Stark Industries", "Wayne Enterprises", "Acme", "Tyrell Corp", "Wonka",
}

var buzzwords = []string{
	"synergize scalable paradigms", "disrupt legacy verticals",
	"leverage cloud-native pipelines", "monetize frictionless platforms",
	"streamline mission-critical deliverables", "iterate on growth hacking",
}

var sentences = []string{
	"We need to hack the neural firewall before the mainframe reboots.",
	"Try to compress the SQL interface, maybe it will quantify the open-source bandwidth.",
	"The optical bus is down, bypass the redundant array so we can index the multi-byte pixel.",
	"Use the cross-platform protocol, then you can parse the auxiliary driver.",
	"If we calculate the bus, we can get to the XML microchip through the digital firewall.",
	"I'll back up the wireless capacitor, that should transmit the haptic feed.",
}

var paragraphs = []string{
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.",
	"Duis aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur.",
	"Excepteur sint occaecat cupidatat non proident, sunt in culpa qui officia deserunt mollit anim id est laborum.",
}

func main() {
	articleCount := flag.Int("articles", 100, "number of articles to create")
	commentCount := flag.Int("comments", 10, "comments per article")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewServerLogger(cfg.Logging.Dir, "seed")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database tables: %v", err)
	}

	authService := auth.NewService(store, cfg.Auth.BcryptCost, cfg.GetSessionTTL(), cfg.GetRememberTTL())
	ctx := context.Background()

	if err := wipe(ctx, store, logger); err != nil {
		log.Fatalf("Failed to wipe existing rows: %v", err)
	}

	userSeq := 0
	newUser := func() (*models.User, error) {
		userSeq++
		return authService.Register(ctx, fmt.Sprintf("user_%d@example.com", userSeq), seedPassword)
	}

	for i := 1; i <= *articleCount; i++ {
		author, err := newUser()
		if err != nil {
			logger.LogError("Failed to create user: %v", err)
			continue
		}

		title := fmt.Sprintf("Will %s really %s?", pick(companies), pick(buzzwords))
		content := fmt.Sprintf("%s <br /> %s <br /> %s", pick(paragraphs), pick(paragraphs), pick(paragraphs))

		article := models.NewArticle(title, content, "", author.ID)
		if err := store.CreateArticle(ctx, article); err != nil {
			logger.LogError("Failed to save article %q: %v", title, err)
			continue
		}
		logger.LogInfo("%s has been saved", article.Title)

		for j := 1; j <= *commentCount; j++ {
			commenter, err := newUser()
			if err != nil {
				logger.LogError("Failed to create user: %v", err)
				continue
			}

			comment := models.NewComment(pick(sentences), article.ID, commenter.ID)
			if err := store.CreateComment(ctx, comment); err != nil {
				logger.LogError("Failed to save comment %d for article %q: %v", j, article.Title, err)
				continue
			}
			logger.LogInfo("Comment %d has been saved for article %s", j, article.Title)
		}
	}

	logger.LogInfo("Seeding complete: %d articles requested", *articleCount)
}

func wipe(ctx context.Context, store storage.Store, logger *utils.ServerLogger) error {
	const batch = 500

	for {
		comments, err := store.ListComments(ctx, false, batch, 0)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			break
		}
		for _, comment := range comments {
			if err := store.DeleteComment(ctx, storage.RefFromID(comment.ID)); err != nil {
				return err
			}
		}
	}

	for {
		articles, err := store.ListArticles(ctx, batch, 0)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			break
		}
		for _, article := range articles {
			if err := store.DeleteArticle(ctx, storage.RefFromID(article.ID)); err != nil {
				return err
			}
		}
	}

	for {
		users, err := store.ListUsers(ctx, batch, 0)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			break
		}
		for _, user := range users {
			if err := store.DeleteUser(ctx, user.ID); err != nil {
				return err
			}
		}
	}

	logger.LogInfo("Existing comments, articles and users removed")
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Database.Driver == "postgres" {
		return storage.NewPostgresStore(cfg.Database.URL)
	}
	return storage.NewSQLiteStore(cfg.Database.URL)
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}
