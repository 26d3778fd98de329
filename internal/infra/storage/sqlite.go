// Package storage adapts the domain's persistence ports onto a
// GORM-backed SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"apexmatch/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage owns the database handle and the three repositories built on
// top of it.
type Storage struct {
	DB       *gorm.DB
	Orders   *OrderRepository
	Trades   *TradeRepository
	Balances *BalanceRepository
}

// NewStorage opens (creating if absent) a SQLite database at dbPath and
// runs auto-migration for every table the engine needs.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&orderRow{}, &tradeRow{}, &balanceRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{
		DB:       db,
		Orders:   &OrderRepository{db: db},
		Trades:   &TradeRepository{db: db},
		Balances: &BalanceRepository{db: db},
	}, nil
}

func defaultDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "ApexMatch", "data", "apexmatch.db"), nil
}

// WithinTransaction implements domain.Transactor by running fn inside a
// GORM transaction. Repositories obtained through ctx-scoped calls inside
// fn all share the transaction because gorm.DB is passed via context.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

type txKey struct{}

func dbFor(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// orderRow is the GORM row shape for domain.Order. Price is nullable to
// represent MARKET orders.
type orderRow struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index"`
	Symbol         string `gorm:"index"`
	Side           string
	Kind           string
	Price          *string
	Quantity       string
	FilledQuantity string
	Status         string
	CreatedAt      time.Time
}

// OrderRepository implements domain.OrderStore against SQLite.
type OrderRepository struct {
	db *gorm.DB
}

func toOrderRow(o *domain.Order) *orderRow {
	row := &orderRow{
		ID:             o.ID,
		UserID:         o.UserID,
		Symbol:         o.Symbol,
		Side:           string(o.Side),
		Kind:           string(o.Kind),
		Quantity:       o.Quantity.String(),
		FilledQuantity: o.FilledQuantity.String(),
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
	if o.Price != nil {
		p := o.Price.String()
		row.Price = &p
	}
	return row
}

func fromOrderRow(row *orderRow) (*domain.Order, error) {
	qty, err := decimal.NewFromString(row.Quantity)
	if err != nil {
		return nil, fmt.Errorf("decode quantity: %w", err)
	}
	filled, err := decimal.NewFromString(row.FilledQuantity)
	if err != nil {
		return nil, fmt.Errorf("decode filled_quantity: %w", err)
	}
	o := &domain.Order{
		ID:             row.ID,
		UserID:         row.UserID,
		Symbol:         row.Symbol,
		Side:           domain.Side(row.Side),
		Kind:           domain.Kind(row.Kind),
		Quantity:       qty,
		FilledQuantity: filled,
		Status:         domain.Status(row.Status),
		CreatedAt:      row.CreatedAt,
	}
	if row.Price != nil {
		p, err := decimal.NewFromString(*row.Price)
		if err != nil {
			return nil, fmt.Errorf("decode price: %w", err)
		}
		o.Price = &p
	}
	return o, nil
}

// WithinTransaction implements domain.Transactor, so an engine holding this
// repository as its OrderStore runs each settlement step in one transaction
// shared by every repository built on the same database handle.
func (r *OrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return (&Storage{DB: r.db}).WithinTransaction(ctx, fn)
}

// Save upserts an order by id.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	return dbFor(ctx, r.db).Save(toOrderRow(o)).Error
}

// FindByID looks up an order by id.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := dbFor(ctx, r.db).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("order", id)
	}
	if err != nil {
		return nil, err
	}
	return fromOrderRow(&row)
}

// tradeRow is the GORM row shape for domain.Trade.
type tradeRow struct {
	ID          string `gorm:"primaryKey"`
	BuyOrderID  string `gorm:"index"`
	SellOrderID string `gorm:"index"`
	Price       string
	Quantity    string
	Timestamp   time.Time
}

// TradeRepository implements domain.TradeStore against SQLite.
type TradeRepository struct {
	db *gorm.DB
}

// Save appends a trade record.
func (r *TradeRepository) Save(ctx context.Context, t *domain.Trade) error {
	row := &tradeRow{
		ID:          t.ID,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price.String(),
		Quantity:    t.Quantity.String(),
		Timestamp:   t.Timestamp,
	}
	return dbFor(ctx, r.db).Create(row).Error
}

// balanceRow is the GORM row shape for a user's cash balance.
type balanceRow struct {
	UserID string `gorm:"primaryKey"`
	Amount string
}

// BalanceRepository implements domain.BalanceStore against SQLite.
type BalanceRepository struct {
	db *gorm.DB
}

// Adjust applies delta to userID's balance inside its own row-level
// transaction (or the caller's, if ctx already carries one), creating the
// row with a zero balance on first use.
func (r *BalanceRepository) Adjust(ctx context.Context, userID string, delta decimal.Decimal) error {
	if _, inTx := ctx.Value(txKey{}).(*gorm.DB); !inTx {
		return (&Storage{DB: r.db}).WithinTransaction(ctx, func(ctx context.Context) error {
			return r.Adjust(ctx, userID, delta)
		})
	}
	db := dbFor(ctx, r.db)
	var row balanceRow
	err := db.First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = balanceRow{UserID: userID, Amount: decimal.Zero.String()}
	} else if err != nil {
		return err
	}

	current, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return fmt.Errorf("decode balance: %w", err)
	}
	row.Amount = current.Add(delta).String()
	return db.Save(&row).Error
}

// Balance returns userID's current balance, zero if the user has never
// been credited or debited.
func (r *BalanceRepository) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var row balanceRow
	err := dbFor(ctx, r.db).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(row.Amount)
}
