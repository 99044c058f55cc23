package pagination

import (
	"math"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPageRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var req PageRequest
		req.Defaults()
		if req.Page != 1 || req.PageSize != DefaultPageSize {
			t.Errorf("unexpected defaults %+v", req)
		}
	})

	t.Run("offset", func(t *testing.T) {
		req := PageRequest{Page: 3, PageSize: 25}
		if req.Offset() != 50 {
			t.Errorf("expected offset 50, got %d", req.Offset())
		}
	})

	t.Run("page_size_capped", func(t *testing.T) {
		req := PageRequest{Page: 1, PageSize: 500}
		req.Defaults()
		if req.PageSize != MaxPageSize {
			t.Errorf("expected page size %d, got %d", MaxPageSize, req.PageSize)
		}
	})

	t.Run("page_capped", func(t *testing.T) {
		req := PageRequest{Page: math.MaxInt, PageSize: MaxPageSize}
		req.Defaults()
		if req.Page != MaxPage {
			t.Errorf("expected page %d, got %d", MaxPage, req.Page)
		}
		if want := (MaxPage - 1) * MaxPageSize; req.Offset() != want || req.Offset() <= 0 {
			t.Errorf("expected offset %d, got %d", want, req.Offset())
		}
	})
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 2, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %v", resp.Data)
	}

	resp = NewPageResponse([]string{"a"}, 1, 20, 0)
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 pages, got %d", resp.TotalPages)
	}
}

type pageRow struct {
	ID   int
	Kind string
}

func setupRows(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&pageRow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for i := 1; i <= 7; i++ {
		kind := "even"
		if i%2 == 1 {
			kind = "odd"
		}
		if err := db.Create(&pageRow{ID: i, Kind: kind}).Error; err != nil {
			t.Fatalf("failed to insert row: %v", err)
		}
	}
	return db
}

func TestFind(t *testing.T) {
	db := setupRows(t)

	t.Run("second_page", func(t *testing.T) {
		q := db.Model(&pageRow{}).Where("kind = ?", "odd")
		resp, err := Find[pageRow](q, PageRequest{Page: 2, PageSize: 3}, "id DESC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.TotalItems != 4 || resp.TotalPages != 2 {
			t.Errorf("unexpected totals %d items, %d pages", resp.TotalItems, resp.TotalPages)
		}
		if len(resp.Data) != 1 || resp.Data[0].ID != 1 {
			t.Errorf("expected only row 1, got %+v", resp.Data)
		}
	})

	t.Run("defaults_applied", func(t *testing.T) {
		resp, err := Find[pageRow](db.Model(&pageRow{}), PageRequest{}, "id ASC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Page != 1 || resp.PageSize != DefaultPageSize || len(resp.Data) != 7 {
			t.Errorf("unexpected page %+v", resp)
		}
	})

	t.Run("past_the_end", func(t *testing.T) {
		resp, err := Find[pageRow](db.Model(&pageRow{}), PageRequest{Page: 9, PageSize: 5}, "id ASC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.TotalItems != 7 {
			t.Errorf("expected 7 items, got %d", resp.TotalItems)
		}
		if resp.Data == nil || len(resp.Data) != 0 {
			t.Errorf("expected empty non-nil data, got %v", resp.Data)
		}
	})
}
