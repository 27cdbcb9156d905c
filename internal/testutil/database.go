package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"storefront/internal/infrastructure/mysql"
)

// DefaultTestDSN points at a local MySQL database named storefront_test.
// Override it with STOREFRONT_TEST_DSN.
const DefaultTestDSN = "root:@tcp(localhost:3306)/storefront_test?parseTime=true&clientFoundRows=true&time_zone=%27%2B00%3A00%27"

// SetupTestDB opens the test database and applies the schema. The test is
// skipped when no server is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_TEST_DSN")
	if dsn == "" {
		dsn = DefaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}
	if err := mysql.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB empties every table, children first, and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	tables := []string{
		"ShoppingCart", "OrderDetail", "Orders", "ProductImage", "Product",
		"Category", "Carrier", "Customer", "Admin", "Account",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// InsertCustomer creates a customer together with its account.
func InsertCustomer(t *testing.T, db *sql.DB, username, fullName string) int64 {
	t.Helper()

	res, err := db.Exec(`INSERT INTO Account (username, passwordHash, accountType) VALUES (?, 'x', 'Customer')`, username)
	if err != nil {
		t.Fatalf("failed to insert account: %v", err)
	}
	accountID, _ := res.LastInsertId()

	res, err = db.Exec(`INSERT INTO Customer (accountId, fullName, address) VALUES (?, ?, '1 Test St')`, accountID, fullName)
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertProduct creates an active product, and its category when needed.
func InsertProduct(t *testing.T, db *sql.DB, name, price string, stock int) int64 {
	t.Helper()

	if _, err := db.Exec(`INSERT IGNORE INTO Category (name) VALUES ('Test')`); err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}
	res, err := db.Exec(`
		INSERT INTO Product (categoryId, name, price, stock)
		SELECT id, ?, ?, ? FROM Category WHERE name = 'Test'`,
		name, price, stock,
	)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
