package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Archive is a write-behind audit copy of the payment ledger and finished
// orders. Its sinks write synchronously and are meant to sit behind a
// services.ArchivingLog, whose writer goroutine calls them. The in-memory
// state stays authoritative; nothing is read back on start.
type Archive struct {
	DB *gorm.DB
}

// Open connects with the named driver ("sqlite" or "mysql") and migrates the
// archive tables.
func Open(driver, dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "pos_archive.db"
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return New(db)
}

// New wraps an existing connection, e.g. an in-memory sqlite in tests.
func New(db *gorm.DB) (*Archive, error) {
	err := db.AutoMigrate(
		&models.TransactionRecord{},
		&models.OrderRecord{},
		&models.OrderItemRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	utils.InfoLogger.Println("Archive AutoMigrate completed.")
	return &Archive{DB: db}, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TransactionSink archives ledger entries.
type TransactionSink struct {
	archive *Archive
}

func (a *Archive) Transactions() TransactionSink {
	return TransactionSink{archive: a}
}

func (s TransactionSink) Archive(r models.PaymentResult) error {
	record := models.NewTransactionRecord(r)
	return s.archive.DB.Create(&record).Error
}

// OrderSink archives orders as they leave the active set.
type OrderSink struct {
	archive *Archive
}

func (a *Archive) Orders() OrderSink {
	return OrderSink{archive: a}
}

func (s OrderSink) Archive(o *models.Order) error {
	record := models.NewOrderRecord(o.Snapshot())
	return s.archive.DB.Create(&record).Error
}

// RecentOrders returns the newest archived orders with their items.
func (a *Archive) RecentOrders(limit int) ([]models.OrderRecord, error) {
	var records []models.OrderRecord
	err := a.DB.Preload("Items").Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}

func (a *Archive) TransactionsForOrder(orderID int) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	err := a.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&records).Error
	return records, err
}
