// Command seed populates a database with a demo account and two years of
// plausible transactions and budgets, for exercising the charts and budget
// views locally.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fintrack/fintrack-be/internal/config"
	"github.com/fintrack/fintrack-be/internal/database"
	"github.com/fintrack/fintrack-be/internal/logger"
	"github.com/fintrack/fintrack-be/internal/models"
	"github.com/fintrack/fintrack-be/internal/services"
)

var expenseRanges = map[string][2]float64{
	"Comida":          {8, 25},
	"Transporte":      {1.5, 15},
	"Entretenimiento": {5, 100},
	"Salud":           {10, 80},
	"Otros":           {5, 50},
	"Casa":            {20, 150},
}

func main() {
	email := flag.String("email", "demo@fintrack.dev", "demo account email")
	password := flag.String("password", "demo-password", "demo account password")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	users := services.NewUserService(db)
	transactions := services.NewTransactionService(db, nil)
	budgets := services.NewBudgetService(db, nil)

	user, err := users.Register("Demo User", *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo user (already seeded?)")
	}

	now := time.Now().UTC()
	start := time.Date(now.Year()-2, time.January, 1, 0, 0, 0, 0, time.UTC)
	count := 0

	// Monthly salary plus occasional freelance income.
	for d := start; !d.After(now); d = d.AddDate(0, 1, 0) {
		count += mustCreate(transactions, user.ID, models.Transaction{
			Text:     "Salario mensual",
			Amount:   3500 + rand.Float64()*500,
			Category: "Salario",
			Date:     time.Date(d.Year(), d.Month(), 1, 9, 0, 0, 0, time.UTC),
		})
		if rand.Float64() > 0.5 {
			count += mustCreate(transactions, user.ID, models.Transaction{
				Text:     "Trabajo freelance",
				Amount:   500 + rand.Float64()*1000,
				Category: "Freelance",
				Date:     time.Date(d.Year(), d.Month(), 10+rand.Intn(15), 18, 0, 0, 0, time.UTC),
			})
		}
	}

	// Daily expenses, roughly six days out of ten.
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		if rand.Float64() <= 0.4 {
			continue
		}
		category := models.BudgetCategories[rand.Intn(len(models.BudgetCategories))]
		bounds := expenseRanges[category]
		amount := bounds[0] + rand.Float64()*(bounds[1]-bounds[0])
		count += mustCreate(transactions, user.ID, models.Transaction{
			Text:     fmt.Sprintf("Gasto de %s", category),
			Amount:   -amount,
			Category: category,
			Date:     d.Add(time.Duration(8+rand.Intn(12)) * time.Hour),
		})
	}

	// Budgets for the current month.
	month := now.Format("2006-01")
	for _, category := range models.BudgetCategories {
		bounds := expenseRanges[category]
		limit := bounds[1] * 10
		if _, err := budgets.Create(user.ID, models.Budget{Category: category, Limit: limit, Month: month}); err != nil {
			log.Fatal().Err(err).Str("category", category).Msg("Failed to create budget")
		}
	}

	log.Info().
		Int("transactions", count).
		Int("budgets", len(models.BudgetCategories)).
		Str("email", user.Email).
		Msg("Seed complete")
}

func mustCreate(svc services.TransactionServiceProvider, userID string, tx models.Transaction) int {
	if _, err := svc.Create(userID, tx); err != nil {
		log.Fatal().Err(err).Str("text", tx.Text).Msg("Failed to create transaction")
	}
	return 1
}
