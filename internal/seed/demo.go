package seed

import (
	"context"
	"fmt"
	"time"

	"polyglot/internal/models"
	"polyglot/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the login password of every demo account.
const DemoPassword = "polyglot123"

type DemoOptions struct {
	Users          int
	Posts          int
	RepliesPerPost int
	// VotesPerPost is the upper bound of reactions cast on each post.
	VotesPerPost int
	// Seed makes runs reproducible when non-zero.
	Seed    int64
	MaxDays int
}

type DemoStats struct {
	Users     int
	Posts     int
	Replies   int
	Reactions int
}

func (o DemoOptions) withDefaults() DemoOptions {
	if o.Users <= 0 {
		o.Users = 10
	}
	if o.Posts <= 0 {
		o.Posts = 30
	}
	if o.RepliesPerPost < 0 {
		o.RepliesPerPost = 0
	}
	if o.VotesPerPost <= 0 {
		o.VotesPerPost = 5
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 60
	}
	return o
}

// Demo fills the database with fake users, posts, replies and votes.
// Languages must be seeded first. Votes go through the reaction ledger so
// the demo data obeys the same one-reaction-per-target rules as real traffic.
func Demo(ctx context.Context, db *gorm.DB, opts DemoOptions) (DemoStats, error) {
	opts = opts.withDefaults()
	faker := gofakeit.New(opts.Seed)
	var stats DemoStats

	var langs []models.Language
	if err := db.WithContext(ctx).Order("id").Find(&langs).Error; err != nil {
		return stats, err
	}
	if len(langs) == 0 {
		return stats, fmt.Errorf("no languages to post in; seed languages first")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return stats, err
	}

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", faker.Username(), faker.Number(100, 999))
		if len(username) > 50 {
			username = username[:50]
		}
		email := fmt.Sprintf("%s@%s", username, faker.DomainName())
		ref := "demo-" + faker.UUID()
		u := models.User{Username: username, Email: &email, ExternalRef: &ref, Password: string(hash)}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return stats, fmt.Errorf("create demo user %q: %w", username, err)
		}
		users = append(users, u)
	}
	stats.Users = len(users)

	reactions := repository.NewReactionRepository(db)
	now := time.Now()
	for i := 0; i < opts.Posts; i++ {
		author := users[faker.Number(0, len(users)-1)]
		lang := langs[faker.Number(0, len(langs)-1)]
		created := faker.DateRange(now.AddDate(0, 0, -opts.MaxDays), now)

		post := models.Post{
			UserID:     author.ID,
			LanguageID: lang.ID,
			Title:      faker.Sentence(faker.Number(3, 8)),
			Content:    faker.Paragraph(1, 3, 8, "\n\n"),
			CreatedAt:  created,
		}
		if err := db.WithContext(ctx).Create(&post).Error; err != nil {
			return stats, err
		}
		stats.Posts++

		for r := 0; r < opts.RepliesPerPost; r++ {
			reply := models.Reply{
				UserID:    users[faker.Number(0, len(users)-1)].ID,
				PostID:    post.ID,
				Content:   faker.Sentence(faker.Number(5, 20)),
				CreatedAt: created.Add(time.Duration(r+1) * time.Minute),
			}
			if err := db.WithContext(ctx).Create(&reply).Error; err != nil {
				return stats, err
			}
			stats.Replies++
		}

		for v := faker.Number(0, opts.VotesPerPost); v > 0; v-- {
			voter := users[faker.Number(0, len(users)-1)]
			if _, err := reactions.Apply(ctx, voter.ID, models.PostTarget(post.ID), faker.Number(0, 3) > 0); err != nil {
				return stats, err
			}
			stats.Reactions++
		}
	}
	return stats, nil
}
