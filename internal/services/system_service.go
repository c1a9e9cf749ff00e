package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/crm-api/internal/auth"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
)

// SystemService owns startup bootstrap and the demo data reset.
type SystemService struct {
	repos *repository.Repositories
	seed  config.SeedConfig
}

// NewSystemService creates a new SystemService
func NewSystemService(repos *repository.Repositories, seed config.SeedConfig) *SystemService {
	return &SystemService{repos: repos, seed: seed}
}

// SeedSummary counts the rows written by ResetData.
type SeedSummary struct {
	Roles     int `json:"roles"`
	Users     int `json:"users"`
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`
}

func roleNames() []string {
	names := make([]string, len(policy.Roles))
	for i, role := range policy.Roles {
		names[i] = string(role)
	}
	return names
}

// Bootstrap creates the role table and, on an empty user table, a first
// administrator who must change their password. The generated password is
// returned when none was configured.
func (s *SystemService) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) (string, error) {
	if err := s.repos.Roles.EnsureRoles(ctx, roleNames()); err != nil {
		return "", fmt.Errorf("failed to ensure roles: %w", err)
	}

	count, err := s.repos.Users.CountActive(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password, generated := cfg.AdminPassword, ""
	if password == "" {
		if password, err = utils.GenerateTempPassword(); err != nil {
			return "", err
		}
		generated = password
	}

	role, err := s.repos.Roles.FindByName(ctx, string(policy.RoleAdmin))
	if err != nil {
		return "", fmt.Errorf("failed to find admin role: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	admin := &models.User{
		Username:       cfg.AdminUsername,
		FirstName:      "Admin",
		Email:          normalizeEmail(cfg.AdminEmail),
		PasswordHash:   hash,
		RoleID:         role.ID,
		Active:         true,
		PasswordChange: true,
	}
	if err := s.repos.Users.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("username", admin.Username).Msg("bootstrap.admin_created")
	return generated, nil
}

// ResetData wipes every table and reloads the demo data set in one
// transaction. Sessions of wiped users stop resolving afterwards.
func (s *SystemService) ResetData(ctx context.Context, principal policy.Principal) (SeedSummary, error) {
	if err := principal.Require(policy.ActionAdminister); err != nil {
		return SeedSummary{}, err
	}

	var summary SeedSummary
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.System.WipeAll(ctx); err != nil {
			return err
		}
		var err error
		summary, err = s.seedAll(ctx, tx)
		return err
	})
	if err != nil {
		return SeedSummary{}, fmt.Errorf("failed to reset data: %w", err)
	}

	zerolog.Ctx(ctx).Warn().
		Uint64("actor_id", principal.UserID).
		Int("users", summary.Users).
		Int("orders", summary.Orders).
		Msg("system.data_reset")
	return summary, nil
}

func (s *SystemService) seedAll(ctx context.Context, tx *repository.Repositories) (SeedSummary, error) {
	var summary SeedSummary
	if err := tx.Roles.EnsureRoles(ctx, roleNames()); err != nil {
		return summary, err
	}
	roles, err := tx.Roles.List(ctx)
	if err != nil {
		return summary, err
	}
	roleIDs := make(map[string]uint64, len(roles))
	for _, role := range roles {
		roleIDs[role.Name] = role.ID
	}
	summary.Roles = len(roles)

	hash, err := auth.HashPassword(s.seed.DefaultPassword)
	if err != nil {
		return summary, err
	}
	userIDs := make([]uint64, 0, len(seedUsers))
	for _, seed := range seedUsers {
		user := &models.User{
			Username:     seed.username,
			FirstName:    seed.firstName,
			LastName:     strPtr(seed.lastName),
			Email:        seed.email(),
			Department:   strPtr(seed.department),
			PasswordHash: hash,
			RoleID:       roleIDs[string(seed.role)],
			Active:       !seed.archived,
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return summary, fmt.Errorf("seeding user %s: %w", seed.username, err)
		}
		if seed.archived {
			if err := tx.Users.Archive(ctx, user.ID, map[string]any{"active": false}); err != nil {
				return summary, err
			}
		}
		userIDs = append(userIDs, user.ID)
	}
	summary.Users = len(userIDs)

	// Seeded rows alternate between the first two users as creator.
	creator := func(i int) *uint64 {
		id := userIDs[i%2]
		return &id
	}

	customerIDs := make([]uint64, 0, len(seedCustomers))
	for i, seed := range seedCustomers {
		customer := seed
		customer.CreatedBy = creator(i)
		if err := tx.Customers.Create(ctx, &customer); err != nil {
			return summary, fmt.Errorf("seeding customer %s: %w", seed.Name, err)
		}
		customerIDs = append(customerIDs, customer.ID)
	}
	summary.Customers = len(customerIDs)

	products := make([]models.Product, 0, len(seedProducts))
	for i, seed := range seedProducts {
		product := models.Product{
			Name:        seed.name,
			Description: seed.description,
			Price:       seedPrice(seed.price),
			CreatedBy:   creator(i),
			UpdatedBy:   creator(i),
		}
		if err := tx.Products.Create(ctx, &product); err != nil {
			return summary, fmt.Errorf("seeding product %s: %w", seed.name, err)
		}
		products = append(products, product)
	}
	summary.Products = len(products)

	for i, seed := range seedOrders {
		items := make([]models.OrderItem, 0, len(seed.items))
		for _, line := range seed.items {
			product := products[line[0]]
			items = append(items, models.OrderItem{ProductID: product.ID, Quantity: line[1], Price: product.Price})
		}
		order := &models.Order{
			CustomerID: customerIDs[seed.customer],
			State:      seed.state,
			Total:      models.ComputeTotal(items),
			CreatedBy:  creator(i),
			Items:      items,
		}
		if err := tx.Orders.CreateWithItems(ctx, order); err != nil {
			return summary, fmt.Errorf("seeding order %d: %w", i+1, err)
		}
		summary.Orders++
	}

	return summary, nil
}
