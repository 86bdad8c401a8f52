// Package seed creates the default resources on an empty database.
//
// Seeding is configuration, not domain logic: it only inserts plain
// resources, the ledger is never involved.
package seed

import (
	"os"
	"strings"

	"github.com/moneta-app/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

type category struct {
	Name     string
	Type     models.TransactionType
	Icon     string
	Children []category
}

// The default resources for a fresh database.
var (
	defaultCategories = []category{
		{Name: "Dining", Type: models.TypeExpense, Icon: "fork.knife", Children: []category{
			{Name: "Breakfast", Type: models.TypeExpense, Icon: "sunrise"},
			{Name: "Lunch", Type: models.TypeExpense, Icon: "sun.max"},
			{Name: "Dinner", Type: models.TypeExpense, Icon: "moon"},
		}},
		{Name: "Transport", Type: models.TypeExpense, Icon: "car.fill"},
		{Name: "Shopping", Type: models.TypeExpense, Icon: "bag.fill"},
		{Name: "Entertainment", Type: models.TypeExpense, Icon: "gamecontroller.fill"},
		{Name: "Housing", Type: models.TypeExpense, Icon: "house.fill"},
		{Name: "Salary", Type: models.TypeIncome, Icon: "creditcard.fill"},
		{Name: "Investments", Type: models.TypeIncome, Icon: "chart.line.uptrend.xyaxis"},
		{Name: "Gifts", Type: models.TypeIncome, Icon: "gift.fill"},
	}

	defaultAccounts = []models.Account{
		{Name: "Cash", Kind: models.AccountKindSavings},
	}

	defaultConsumers = []models.Consumer{
		{Name: "Me", IsDefault: true},
	}
)

// Apply seeds the default accounts, categories and consumers. It is a
// no-op when the database already holds any of these resources.
//
// Resources whose name matches a glob pattern in the SEED_SKIP
// environment variable (comma separated) are not created.
func Apply(db *gorm.DB) error {
	var count int64
	err := db.Model(&models.Account{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		err = db.Model(&models.Category{}).Count(&count).Error
		if err != nil {
			return err
		}
	}

	if count == 0 {
		err = db.Model(&models.Consumer{}).Count(&count).Error
		if err != nil {
			return err
		}
	}

	if count > 0 {
		log.Debug().Msg("database is not empty, skipping seeding")
		return nil
	}

	skip := skipPatterns()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, account := range defaultAccounts {
			if skipped(skip, account.Name) {
				continue
			}

			err := tx.Create(&account).Error
			if err != nil {
				return err
			}
		}

		for _, consumer := range defaultConsumers {
			if skipped(skip, consumer.Name) {
				continue
			}

			err := tx.Create(&consumer).Error
			if err != nil {
				return err
			}
		}

		for _, c := range defaultCategories {
			if skipped(skip, c.Name) {
				continue
			}

			parent := models.Category{Name: c.Name, Type: c.Type, Icon: c.Icon}
			err := tx.Create(&parent).Error
			if err != nil {
				return err
			}

			for _, child := range c.Children {
				if skipped(skip, child.Name) {
					continue
				}

				err := tx.Create(&models.Category{
					Name:     child.Name,
					Type:     child.Type,
					Icon:     child.Icon,
					ParentID: &parent.ID,
				}).Error
				if err != nil {
					return err
				}
			}
		}

		log.Info().Msg("seeded default resources")
		return nil
	})
}

func skipPatterns() []string {
	patterns := make([]string, 0)
	for _, p := range strings.Split(os.Getenv("SEED_SKIP"), ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	return patterns
}

func skipped(patterns []string, name string) bool {
	for _, p := range patterns {
		if glob.Glob(p, name) {
			return true
		}
	}

	return false
}
