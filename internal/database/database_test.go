package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestBuildDSNInjectsPassword(t *testing.T) {
	out, err := BuildDSN("shop:old@tcp(db:3306)/productpraat", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := mysql.ParseDSN(out)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if cfg.User != "shop" || cfg.Passwd != "s3cret" || cfg.DBName != "productpraat" || !cfg.ParseTime {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestBuildDSNKeepsPassword(t *testing.T) {
	out, err := BuildDSN("shop:old@tcp(db:3306)/productpraat", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "shop:old@") {
		t.Fatalf("dsn = %s", out)
	}
}

func TestBuildDSNRejectsGarbage(t *testing.T) {
	if _, err := BuildDSN("not a dsn", ""); err == nil {
		t.Fatal("expected error")
	}
}
