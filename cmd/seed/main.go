package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"spaced-learning-be/internal/model"
	"spaced-learning-be/pkg/database"
	"spaced-learning-be/pkg/srs"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Seeds a demo goal with a small skill tree, cards, and a deck so the study
// endpoints have something to select from on a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	userId := uuid.New()
	if raw := os.Getenv("SEED_USER_ID"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			color.Red("Error: SEED_USER_ID is not a valid UUID")
			os.Exit(1)
		}
		userId = parsed
	}

	color.Cyan("Seeding demo study data for user %s...", userId)

	if err := seed(db, userId); err != nil {
		color.Red("Error: Seeding failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: demo data seeded.")
}

func seed(db *gorm.DB, userId uuid.UUID) error {
	now := time.Now()

	goal := model.Goal{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Spanish Basics",
		CreatedAt: now,
	}
	if err := db.Create(&goal).Error; err != nil {
		return err
	}

	nodeTitles := []struct {
		title string
		path  string
		depth int
	}{
		{"Greetings", "001", 0},
		{"Formal Greetings", "001.001", 1},
		{"Informal Greetings", "001.002", 1},
		{"Numbers", "002", 0},
		{"Colors", "003", 0},
	}

	nodes := make([]model.SkillNode, 0, len(nodeTitles))
	for _, nt := range nodeTitles {
		nodes = append(nodes, model.SkillNode{
			Id:        uuid.New(),
			GoalId:    goal.Id,
			Title:     nt.title,
			Depth:     nt.depth,
			Path:      nt.path,
			Enabled:   true,
			CreatedAt: now,
		})
	}
	if err := db.Create(&nodes).Error; err != nil {
		return err
	}

	deck := model.Deck{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      "Starter Deck",
		CreatedAt: now,
	}
	if err := db.Create(&deck).Error; err != nil {
		return err
	}

	pairs := map[string][][2]string{
		"Formal Greetings": {
			{"How do you say \"good morning\"?", "Buenos dias"},
			{"How do you say \"good evening\"?", "Buenas noches"},
		},
		"Informal Greetings": {
			{"How do you say \"hi\"?", "Hola"},
			{"How do you say \"what's up\"?", "Que tal"},
		},
		"Numbers": {
			{"What is \"one\"?", "Uno"},
			{"What is \"two\"?", "Dos"},
			{"What is \"three\"?", "Tres"},
		},
		"Colors": {
			{"What color is \"rojo\"?", "Red"},
			{"What color is \"azul\"?", "Blue"},
		},
	}

	cardCount := 0
	for _, node := range nodes {
		items, ok := pairs[node.Title]
		if !ok {
			continue
		}
		for _, item := range items {
			card := model.Card{
				Id:        uuid.New(),
				UserId:    userId,
				NodeId:    node.Id,
				Question:  item[0],
				Answer:    item[1],
				CardType:  "flashcard",
				Active:    true,
				SrsState:  srs.StateNew.String(),
				SrsDue:    now,
				CreatedAt: now,
			}
			if err := db.Create(&card).Error; err != nil {
				return err
			}
			cardCount++

			if err := db.Create(&model.DeckCard{
				DeckId:  deck.Id,
				CardId:  card.Id,
				AddedAt: now,
			}).Error; err != nil {
				return err
			}
		}

		if err := db.Model(&model.SkillNode{}).
			Where("id = ?", node.Id).
			Update("card_count", len(items)).Error; err != nil {
			return err
		}
	}

	fmt.Printf("Seeded goal %s with %d nodes, %d cards, deck %s\n", goal.Id, len(nodes), cardCount, deck.Id)
	return nil
}
