package commons

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

// Seed is a catalog fixture: categories with their products, carriers, and
// optionally the first admin.
type Seed struct {
	Admin      *SeedAccount   `yaml:"admin"`
	Categories []SeedCategory `yaml:"categories"`
	Carriers   []SeedCarrier  `yaml:"carriers"`
}

type SeedAccount struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
}

type SeedCategory struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Products    []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
}

type SeedCarrier struct {
	SeedAccount   `yaml:",inline"`
	Phone         string `yaml:"phone"`
	VehicleNumber string `yaml:"vehicleNumber"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	for _, c := range s.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed: category without a name")
		}
		for _, p := range c.Products {
			if _, err := decimal.NewFromString(p.Price); err != nil {
				return fmt.Errorf("seed: product %q: invalid price %q", p.Name, p.Price)
			}
		}
	}
	for _, c := range s.Carriers {
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("seed: carrier %q needs a username and password", c.FullName)
		}
	}
	if s.Admin != nil && (s.Admin.Username == "" || s.Admin.Password == "") {
		return fmt.Errorf("seed: admin needs a username and password")
	}
	return nil
}

type CatalogWriter interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CarrierCreator interface {
	Create(ctx context.Context, creds accountservice.Credentials, c domain.Carrier) (*domain.Carrier, error)
}

type AdminCreator interface {
	CreateAdmin(ctx context.Context, creds accountservice.Credentials, ad domain.Admin) (*domain.Admin, error)
}

// SeedReport counts what Apply created and what already existed.
type SeedReport struct {
	Categories int
	Products   int
	Carriers   int
	Admins     int
	Skipped    int
}

type Seeder struct {
	catalog  CatalogWriter
	carriers CarrierCreator
	admins   AdminCreator
	logger   *zap.Logger
}

func NewSeeder(catalog CatalogWriter, carriers CarrierCreator, admins AdminCreator, logger *zap.Logger) *Seeder {
	return &Seeder{
		catalog:  catalog,
		carriers: carriers,
		admins:   admins,
		logger:   logger,
	}
}

// Apply loads the fixture through the services. Existing categories are
// reused by name and conflicting accounts are skipped, so a fixture can be
// applied more than once.
func (s *Seeder) Apply(ctx context.Context, seed *Seed) (SeedReport, error) {
	var report SeedReport

	existing, err := s.catalog.ListCategories(ctx, true)
	if err != nil {
		return report, fmt.Errorf("listing categories: %w", err)
	}
	categoryIDs := make(map[string]int64, len(existing))
	for _, c := range existing {
		categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	for _, sc := range seed.Categories {
		id, ok := categoryIDs[strings.ToLower(sc.Name)]
		if !ok {
			created, err := s.catalog.CreateCategory(ctx, domain.Category{Name: sc.Name, Description: sc.Description, IsActive: true})
			if err != nil {
				return report, fmt.Errorf("creating category %q: %w", sc.Name, err)
			}
			id = created.ID
			categoryIDs[strings.ToLower(sc.Name)] = id
			report.Categories++
		}

		for _, sp := range sc.Products {
			_, err := s.catalog.CreateProduct(ctx, domain.Product{
				CategoryID:  id,
				Name:        sp.Name,
				Description: sp.Description,
				Price:       decimal.RequireFromString(sp.Price),
				Stock:       sp.Stock,
				IsActive:    true,
			})
			if skipped, err := s.skipConflict(err, "product", sp.Name); err != nil {
				return report, err
			} else if skipped {
				report.Skipped++
				continue
			}
			report.Products++
		}
	}

	for _, sc := range seed.Carriers {
		_, err := s.carriers.Create(ctx, accountservice.Credentials{Username: sc.Username, Password: sc.Password}, domain.Carrier{
			FullName:      sc.FullName,
			Phone:         sc.Phone,
			VehicleNumber: sc.VehicleNumber,
			IsAvailable:   true,
		})
		if skipped, err := s.skipConflict(err, "carrier", sc.Username); err != nil {
			return report, err
		} else if skipped {
			report.Skipped++
			continue
		}
		report.Carriers++
	}

	if seed.Admin != nil {
		_, err := s.admins.CreateAdmin(ctx, accountservice.Credentials{Username: seed.Admin.Username, Password: seed.Admin.Password}, domain.Admin{
			FullName: seed.Admin.FullName,
			Email:    seed.Admin.Email,
		})
		skipped, err := s.skipConflict(err, "admin", seed.Admin.Username)
		if err != nil {
			return report, err
		}
		if skipped {
			report.Skipped++
		} else {
			report.Admins++
		}
	}

	s.logger.Info("seed applied",
		zap.Int("categories", report.Categories),
		zap.Int("products", report.Products),
		zap.Int("carriers", report.Carriers),
		zap.Int("admins", report.Admins),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (s *Seeder) skipConflict(err error, kind, name string) (bool, error) {
	if err == nil {
		return false, nil
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		s.logger.Warn("seed entry already exists", zap.String("kind", kind), zap.String("name", name))
		return true, nil
	}
	return false, fmt.Errorf("creating %s %q: %w", kind, name, err)
}
