// seed inserts a demo user and a handful of greetings into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/greeting-api/internal/domain"
	"github.com/ErlanBelekov/greeting-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/greeting-api/internal/password"
	"github.com/ErlanBelekov/greeting-api/internal/usecase"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
)

var messages = []string{
	"Hello, World!",
	"Good morning",
	"Bonjour",
	"Hola",
	"Ciao",
	"Hallo",
	"Salam",
	"Konnichiwa",
	"Namaste",
	"Sawubona",
	"Merhaba",
	"Ahoj",
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)

	user, err := users.FindByEmail(ctx, seedEmail)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		hash, herr := password.NewHasher(password.DefaultParams).Hash(seedPassword)
		if herr != nil {
			log.Fatalf("hash password: %v", herr)
		}
		user, err = users.Create(ctx, &domain.User{
			FirstName:    "Seed",
			LastName:     "User",
			Email:        seedEmail,
			PasswordHash: hash,
		})
		if err != nil {
			log.Fatalf("create user: %v", err)
		}
	case err != nil:
		log.Fatalf("find user: %v", err)
	}

	greetings := usecase.NewGreetingUsecase(postgres.NewGreetingRepository(pool), slog.Default())
	for _, m := range messages {
		if _, err := greetings.Create(ctx, user.ID, m); err != nil {
			log.Fatalf("create greeting %q: %v", m, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:              %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:           %s\n", user.ID)
	fmt.Printf("  Greetings created: %d\n", len(messages))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1, log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/users/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # -> {\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2, page through greetings:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s 'http://localhost:8080/greetings?limit=5' -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s 'http://localhost:8080/greetings?limit=5&cursor=NEXT_CURSOR' -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3, reset the password (the link is printed in the server log when ENV=local):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/users/forgot-password \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' -d '{\"email\":\"%s\"}'\n", seedEmail)
	fmt.Println("    curl -s -X POST 'http://localhost:8080/users/reset-password?token=TOKEN' \\")
	fmt.Println("      -H 'Content-Type: application/json' -d '{\"password\":\"new-password\"}'")
}
