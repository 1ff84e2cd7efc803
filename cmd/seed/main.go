package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"contesthub/internal/config"
	"contesthub/internal/logger"
	"contesthub/internal/model"
	"contesthub/internal/repository"
	"contesthub/internal/store"
)

// seedConfig names the accounts the seed creates. Admins can only come from here or
// from an existing admin, since self-registration never grants the admin role.
type seedConfig struct {
	AdminEmail      string `env:"SEED_ADMIN_EMAIL,default=admin@contesthub.local"`
	AdminPassword   string `env:"SEED_ADMIN_PASSWORD"`
	CreatorEmail    string `env:"SEED_CREATOR_EMAIL,default=creator@contesthub.local"`
	CreatorPassword string `env:"SEED_CREATOR_PASSWORD"`
}

// loadSeedConfig reads the seed accounts from the environment. No password has a
// default: the admin one is mandatory and the demo creator is only seeded when its
// password is given.
func loadSeedConfig() (seedConfig, error) {
	var seed seedConfig
	if err := envdecode.Decode(&seed); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return seed, err
	}
	if strings.TrimSpace(seed.AdminPassword) == "" {
		return seed, errors.New("SEED_ADMIN_PASSWORD is required")
	}
	return seed, nil
}

// withDemoCreator reports whether a demo creator and its pending contest are seeded.
func (c seedConfig) withDemoCreator() bool {
	return strings.TrimSpace(c.CreatorPassword) != ""
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	seed, err := loadSeedConfig()
	if err != nil {
		logrus.Fatalf("seed config: %v", err)
	}

	log := logger.Component(logger.New(cfg.LogLevel, cfg.LogFormat), "seed")
	log.Info("Starting seed script...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init")
	}
	defer st.Close(context.Background())

	if err := ensureUser(ctx, st.Users, log, "Admin", seed.AdminEmail, seed.AdminPassword, model.RoleAdmin); err != nil {
		log.WithError(err).Fatal("seed admin")
	}
	if !seed.withDemoCreator() {
		log.Info("SEED_CREATOR_PASSWORD not set, skipping demo creator and contest")
	} else {
		if err := ensureUser(ctx, st.Users, log, "Demo Creator", seed.CreatorEmail, seed.CreatorPassword, model.RoleCreator); err != nil {
			log.WithError(err).Fatal("seed creator")
		}
		if err := ensureContest(ctx, st.Contests, log, model.NormalizeEmail(seed.CreatorEmail)); err != nil {
			log.WithError(err).Fatal("seed contest")
		}
	}

	log.Info("Seed completed")
}

// ensureUser creates the account unless one with the same email exists.
func ensureUser(ctx context.Context, users repository.UserRepository, log *logrus.Entry, name, email, password string, role model.Role) error {
	email = model.NormalizeEmail(email)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(hashed)
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		ContestLimit: model.DefaultContestLimit,
	}
	err = users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		log.WithField("email", email).Info("user already exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"email": email, "role": role}).Info("user created")
	return nil
}

// ensureContest posts one pending demo contest for a creator who has none yet.
func ensureContest(ctx context.Context, contests repository.ContestRepository, log *logrus.Entry, creatorEmail string) error {
	count, err := contests.CountByCreator(ctx, creatorEmail)
	if err != nil {
		return err
	}
	if count > 0 {
		log.WithField("creator", creatorEmail).Info("creator already has contests, skipping")
		return nil
	}
	contest := &model.Contest{
		Title:           "Logo Design Sprint",
		Description:     "Design a logo for a neighbourhood coffee shop.",
		Category:        "design",
		Price:           decimal.NewFromInt(5),
		PrizeMoney:      decimal.NewFromInt(100),
		TaskInstruction: "Submit a link to a PNG or SVG of your logo.",
		CreatorEmail:    creatorEmail,
		Status:          model.ContestStatusPending,
		IsActive:        true,
		EndDate:         time.Now().UTC().Add(model.DefaultContestDuration),
		Participants:    []string{},
		Submissions:     []model.Submission{},
	}
	if err := contests.Create(ctx, contest); err != nil {
		return err
	}
	log.WithField("contest_id", contest.ID).Info("pending demo contest created")
	return nil
}
