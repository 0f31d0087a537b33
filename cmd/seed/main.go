package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/errors"
	"recipebox/internal/model"
	"recipebox/internal/repository"
	"recipebox/internal/service"
)

// seedRecipe is a development fixture.
type seedRecipe struct {
	Title       string
	Description string
	TimeMinutes int
	Price       string
	Link        string
	Tags        []string
}

var fixtures = map[string][]seedRecipe{
	"chef@example.com": {
		{Title: "Thai green curry", Description: "Fragrant coconut curry.", TimeMinutes: 35, Price: "9.50", Tags: []string{"Thai", "Dinner"}},
		{Title: "Pad see ew", Description: "Stir-fried rice noodles.", TimeMinutes: 20, Price: "7.25", Tags: []string{"Thai"}},
		{Title: "Overnight oats", TimeMinutes: 5, Price: "2.00", Tags: []string{"Breakfast"}},
	},
	"baker@example.com": {
		{Title: "Sourdough loaf", Description: "Two-day ferment.", TimeMinutes: 180, Price: "4.80", Link: "https://example.com/sourdough", Tags: []string{"Baking"}},
		{Title: "Cinnamon rolls", TimeMinutes: 90, Price: "6.00", Tags: []string{"Baking", "Dessert"}},
	},
}

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Tag{}, &model.Recipe{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)
	userService := service.NewUserService(userRepo)
	recipeService := service.NewRecipeService(recipeRepo, cacheClient)

	ctx := context.Background()

	if _, err := userService.CreateSuperuser(ctx, "admin@example.com", "changeme123"); err != nil {
		log.Printf("Skipping superuser (may already exist): %v", err)
	}

	seededUsers, seededRecipes := 0, 0
	for email, recipes := range fixtures {
		user, err := seedUser(ctx, userService, userRepo, email)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", email, err)
		}
		seededUsers++

		for _, fx := range recipes {
			created, err := seedOneRecipe(ctx, recipeService, user.ID, fx)
			if err != nil {
				log.Fatalf("Failed to seed recipe %q: %v", fx.Title, err)
			}
			if created {
				seededRecipes++
			}
		}
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users processed: %d", seededUsers)
	log.Printf("  - New recipes created: %d", seededRecipes)
}

// seedUser creates the fixture user, or returns the existing one.
func seedUser(ctx context.Context, users service.UserService, repo repository.UserRepository, email string) (*model.User, error) {
	user, err := users.CreateUser(ctx, email, "samplepass123", "Sample User")
	if err == errors.ErrEmailTaken {
		return repo.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// seedOneRecipe creates the fixture recipe unless the user already has one
// with the same title.
func seedOneRecipe(ctx context.Context, recipes service.RecipeService, ownerID uint, fx seedRecipe) (bool, error) {
	existing, err := recipes.List(ctx, ownerID)
	if err != nil {
		return false, err
	}
	for _, r := range existing {
		if r.Title == fx.Title {
			return false, nil
		}
	}

	in, err := fixtureInput(fx)
	if err != nil {
		return false, err
	}
	if _, err := recipes.Create(ctx, ownerID, in); err != nil {
		return false, err
	}
	return true, nil
}

func fixtureInput(fx seedRecipe) (service.RecipeInput, error) {
	price, err := decimal.NewFromString(fx.Price)
	if err != nil {
		return service.RecipeInput{}, err
	}
	tags := fx.Tags
	return service.RecipeInput{
		Title:       fx.Title,
		Description: fx.Description,
		TimeMinutes: fx.TimeMinutes,
		Price:       price,
		Link:        fx.Link,
		Tags:        &tags,
	}, nil
}
