package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/AlexVocao/login/internal/auth"
	"github.com/AlexVocao/login/internal/config"
	"github.com/AlexVocao/login/internal/db"
	apperrors "github.com/AlexVocao/login/internal/errors"
	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
	"github.com/AlexVocao/login/internal/service"
)

// SeedUserData is one account in the seed file.
type SeedUserData struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address"`
	Gender   *string `json:"gender"`
}

func main() {
	source := flag.String("source", "seed/users.json", "path or http(s) URL of a JSON array of users")
	flag.Parse()

	log.Println("Starting seed script...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}, &model.PasswordResetToken{}, &model.AuthEvent{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	log.Printf("Reading users from: %s", *source)
	users, err := loadUsers(*source)
	if err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	log.Printf("Loaded %d users", len(users))

	authService := service.NewAuthService(service.AuthDeps{
		Users:  repository.NewUserRepository(gormDB),
		Tokens: repository.NewResetTokenRepository(gormDB),
		Hasher: auth.NewBcryptHasher(auth.DefaultBcryptCost),
	}, service.AuthOptions{})

	created, existing, err := seedUsers(context.Background(), authService, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Already present: %d", existing)
}

// loadUsers reads the seed list from a local file or an http(s) URL.
func loadUsers(source string) ([]SeedUserData, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch seed data: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var users []SeedUserData
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

// seedUsers registers each user through the auth service so passwords are
// hashed the same way as real signups. Users that already exist are skipped.
func seedUsers(ctx context.Context, svc service.AuthService, users []SeedUserData) (created int, existing int, err error) {
	for _, u := range users {
		_, err := svc.Signup(ctx, service.SignupInput{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Address:  u.Address,
			Gender:   u.Gender,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			existing++
		default:
			return created, existing, fmt.Errorf("error creating user %q: %w", u.Username, err)
		}
	}
	return created, existing, nil
}
