package db_test

import (
	"testing"

	appdb "github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/testutil"
)

func TestConstraintClassification(t *testing.T) {
	database := testutil.NewTestDB(t)

	insert := func(name string, price int64) error {
		_, err := database.Exec(
			`INSERT INTO competitions (name, city, start_date, end_date, price_cents) VALUES (?, 'MADRID', '2026-01-01', '2026-06-30', ?)`,
			name, price)
		return err
	}

	if err := insert("Liga", 0); err != nil {
		t.Fatalf("insert competition: %v", err)
	}

	dup := insert("Liga", 0)
	if !appdb.IsUniqueViolation(dup) || appdb.IsCheckViolation(dup) {
		t.Fatalf("expected unique violation, got %v", dup)
	}

	negative := insert("Otra", -1)
	if !appdb.IsCheckViolation(negative) || appdb.IsUniqueViolation(negative) {
		t.Fatalf("expected check violation, got %v", negative)
	}

	_, fk := database.Exec(`INSERT INTO leagues (competition_id, name) VALUES (9999, 'Primera')`)
	if !appdb.IsForeignKeyViolation(fk) || appdb.IsCheckViolation(fk) {
		t.Fatalf("expected foreign key violation, got %v", fk)
	}
}
