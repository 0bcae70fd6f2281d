package postgres

import (
	"context"

	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory opens the database and returns a factory bound to it
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &RepositoryFactory{db: db, logger: logger}, nil
}

// NewRepositoryFactoryFromDB builds a factory around an existing pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// InitSchema creates the tables and indexes if they are missing
func (f *RepositoryFactory) InitSchema(ctx context.Context) error {
	return f.db.InitSchema(ctx)
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Organizations: NewOrganizationRepository(f.db, f.logger),
		Users:         NewUserRepository(f.db, f.logger),
		Clients:       NewClientRepository(f.db, f.logger),
		Galleries:     NewGalleryRepository(f.db, f.logger),
		Invoices:      NewInvoiceRepository(f.db, f.logger),
		Payments:      NewPaymentRepository(f.db, f.logger),
		Bookings:      NewBookingRepository(f.db, f.logger),
		Rates:         NewRateRepository(f.db, f.logger),
		Earnings:      NewEarningRepository(f.db, f.logger),
		Payouts:       NewPayoutRepository(f.db, f.logger),
		Workflows:     NewWorkflowRepository(f.db, f.logger),
		Support:       NewSupportRepository(f.db, f.logger),
		Content:       NewContentRepository(f.db, f.logger),
		APIKeys:       NewAPIKeyRepository(f.db, f.logger),
		FeatureFlags:  NewFeatureFlagRepository(f.db, f.logger),
		SocialPosts:   NewSocialPostRepository(f.db, f.logger),
		AuditLogs:     NewAuditRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
