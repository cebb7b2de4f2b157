package orm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresClient struct {
	database *gorm.DB
}

func NewPostgresClient(host string, port string, user string, password string, name string) (*PostgresClient, error) {
	database, err := gorm.Open(
		postgres.Open(
			fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				host,
				port,
				user,
				password,
				name,
			),
		),
		Config(),
	)
	if err != nil {
		return nil, err
	}

	rawDatabase, err := database.DB()
	if err != nil {
		return nil, err
	}

	rawDatabase.SetMaxOpenConns(16)
	rawDatabase.SetMaxIdleConns(4)
	rawDatabase.SetConnMaxIdleTime(5 * time.Second)

	return &PostgresClient{
		database: database,
	}, nil
}

// NewClient wraps an already opened gorm database.
func NewClient(database *gorm.DB) *PostgresClient {
	return &PostgresClient{
		database: database,
	}
}

// Config is the gorm configuration shared by every dialect. Duplicate-key
// and foreign-key errors are translated into gorm sentinels.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Transaction runs fn as one all-or-nothing unit. Nested calls on the client
// handed to fn become savepoints.
func (c *PostgresClient) Transaction(ctx context.Context, fn func(tx *PostgresClient) error) error {
	return c.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresClient{database: tx})
	})
}

func (c *PostgresClient) Migrate(ctx context.Context) error {
	database := c.database.WithContext(ctx)
	err := database.AutoMigrate(
		&User{},
		&Board{},
		&Post{},
		&PostFile{},
		&Todo{},
		&ShopItem{},
		&ShopItemOption{},
		&Token{},
	)
	if err != nil {
		return err
	}

	for _, thread := range Threads {
		if err := createTable(database, thread.CommentTable, &Comment{}); err != nil {
			return err
		}
		if err := createTable(database, thread.LikeTable, &CommentLike{}); err != nil {
			return err
		}
	}
	return nil
}

// createTable creates a thread table from a shared row shape. AutoMigrate
// cannot be used here: its model reordering ignores the table override.
func createTable(database *gorm.DB, table string, model any) error {
	migrator := database.Table(table).Migrator()
	if migrator.HasTable(table) {
		return nil
	}
	if err := migrator.CreateTable(model); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	rawDatabase, err := c.database.DB()
	if err != nil {
		return err
	}
	return rawDatabase.Close()
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	rawDatabase, err := c.database.DB()
	if err != nil {
		return err
	}
	return rawDatabase.PingContext(ctx)
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks drop the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
