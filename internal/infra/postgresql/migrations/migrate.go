package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/umutkarci/notify-manager/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createAccountsTable(),
		createDestinationsTable(),
		createTemplatesTable(),
		createDeliveryRecordsTable(),
	})

	return m.Migrate()
}

func createAccountsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_accounts",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.AccountModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.AccountModel{})
		},
	}
}

func createDestinationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_destinations",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DestinationModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_destinations_account_active ON destinations (account_id, is_active)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DestinationModel{})
		},
	}
}

func createTemplatesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_templates",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.TemplateModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_account_name ON templates (account_id, name)`,
				`CREATE INDEX IF NOT EXISTS idx_templates_public ON templates (is_public) WHERE is_public`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.TemplateModel{})
		},
	}
}

func createDeliveryRecordsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_delivery_records",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DeliveryRecordModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_delivery_records_account_sent ON delivery_records (account_id, sent_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_delivery_records_batch_id ON delivery_records (batch_id)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DeliveryRecordModel{})
		},
	}
}
