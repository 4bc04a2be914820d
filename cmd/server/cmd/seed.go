package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/config"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/eventura/server/internal/storage/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo accounts and events",
	Long: `Create a demo admin, a demo collaborator and a handful of verified
events. Intended for local development; safe to re-run, existing
accounts are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func runSeed() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	accountRepo := postgres.NewAccountRepository(pool)
	failureRepo := postgres.NewLoginFailureRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	tracker := accounts.NewTracker(failureRepo, cfg.Auth.LockoutWindow, cfg.Auth.LockoutMaxFailures)
	accountService := accounts.NewService(accountRepo, tracker, tokens, nil, logger)
	eventService := events.NewService(eventRepo, logger)

	admin, err := seedAccount(ctx, accountService, accountRepo, accounts.RegisterParams{
		Email:           "admin@eventura.local",
		Name:            "Demo Admin",
		Role:            accounts.RoleAdmin.String(),
		Entity:          "Eventura",
		Password:        "AdminDemo123!",
		PasswordConfirm: "AdminDemo123!",
		Verified:        true,
	})
	if err != nil {
		return err
	}

	collaborator, err := seedAccount(ctx, accountService, accountRepo, accounts.RegisterParams{
		Email:           "colaborador@eventura.local",
		Name:            "Demo Colaborador",
		Role:            accounts.RoleCollaborator.String(),
		Entity:          "Asociación Demo",
		Password:        "ColabDemo123!",
		PasswordConfirm: "ColabDemo123!",
		Verified:        true,
	})
	if err != nil {
		return err
	}

	date := time.Now().AddDate(0, 1, 0)
	demoEvents := []events.EventParams{
		{
			Name:          "Taller de Robótica",
			Location:      "Malaga",
			Date:          &date,
			Category:      "Educación",
			Accessibility: "Accesible en silla de ruedas",
			GroupSize:     20,
			Ages:          "8-12",
			Modality:      "Presencial",
			Price:         0,
			Content:       "<p>Taller introductorio de robótica para niños.</p>",
		},
		{
			Name:      "Concierto de Jazz",
			Location:  "Sevilla",
			Date:      &date,
			Category:  "Música",
			GroupSize: 200,
			Ages:      "Todas las edades",
			Modality:  "Presencial",
			Price:     15,
			Content:   "<p>Una noche de jazz en directo.</p>",
		},
		{
			Name:      "Curso de Fotografía",
			Location:  "Malaga",
			Date:      &date,
			Category:  "Cultura",
			GroupSize: 15,
			Ages:      "18+",
			Modality:  "Online",
			Price:     30,
			Content:   "<p>Curso online de fotografía urbana.</p>",
		},
	}

	for i, params := range demoEvents {
		owner := admin
		if i%2 == 1 {
			owner = collaborator
		}
		event, err := eventService.Create(ctx, owner.ID, params)
		if err != nil {
			return fmt.Errorf("seed event %q: %w", params.Name, err)
		}
		if err := eventService.SetVerified(ctx, event.ID, true); err != nil {
			return fmt.Errorf("verify event %q: %w", params.Name, err)
		}
		logger.Info().Str("slug", event.Slug).Msg("seeded event")
	}

	fmt.Println("seed complete")
	return nil
}

func seedAccount(ctx context.Context, svc *accounts.Service, repo accounts.Repository, params accounts.RegisterParams) (*accounts.Account, error) {
	account, _, err := svc.Register(ctx, params)
	if errors.Is(err, accounts.ErrDuplicateEmail) {
		existing, lookupErr := repo.GetByEmail(ctx, params.Email)
		if lookupErr != nil {
			return nil, fmt.Errorf("seed account %s: %w", params.Email, lookupErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed account %s: %w", params.Email, err)
	}
	return account, nil
}
