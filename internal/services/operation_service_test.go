package services

import (
	"context"
	"sync"
	"testing"

	"fintrack/internal/events"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func expenseInput(accountID, categoryID string, amount money.Amount) OperationInput {
	return OperationInput{
		Type:       models.OperationTypeExpense,
		Amount:     amount,
		AccountID:  accountID,
		CategoryID: strPtr(categoryID),
		Date:       "2024-03-15",
	}
}

func transferInput(from, to string, amount money.Amount) OperationInput {
	return OperationInput{
		Type:        models.OperationTypeTransfer,
		Amount:      amount,
		AccountID:   from,
		ToAccountID: strPtr(to),
		Date:        "2024-03-20",
	}
}

func TestCreateOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("expense_debits_account", func(t *testing.T) {
		db, store := setupStore(t)
		rec := &events.Recorder{}
		svc := NewOperationService(store, rec)
		account := testutil.CreateTestAccount(t, db, 100000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 15000))
		testutil.AssertNoError(t, err)

		if op.ID == "" {
			t.Fatal("expected operation ID")
		}
		testutil.AssertBalance(t, db, account.ID, 85000)

		types := rec.Types()
		if len(types) != 1 || types[0] != events.OperationCreated {
			t.Errorf("expected one operation.created event, got %v", types)
		}
	})

	t.Run("income_credits_account", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 0)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)

		_, err := svc.CreateOperation(ctx, OperationInput{
			Type:       models.OperationTypeIncome,
			Amount:     250000,
			AccountID:  account.ID,
			CategoryID: strPtr(cat.ID),
			Date:       "2024-03-01",
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, 250000)
	})

	t.Run("transfer_moves_money", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		from := testutil.CreateTestAccount(t, db, 50000)
		to := testutil.CreateTestAccount(t, db, 20000)

		_, err := svc.CreateOperation(ctx, transferInput(from.ID, to.ID, 10000))
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, from.ID, 40000)
		testutil.AssertBalance(t, db, to.ID, 30000)
	})

	t.Run("overdraft_allowed", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 1000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		_, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 5000))
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, -4000)
	})

	t.Run("unknown_account", func(t *testing.T) {
		db, store := setupStore(t)
		rec := &events.Recorder{}
		svc := NewOperationService(store, rec)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		_, err := svc.CreateOperation(ctx, expenseInput("missing", cat.ID, 100))
		testutil.AssertAppError(t, err, "REFERENCE_ERROR")

		var count int64
		db.Model(&models.Operation{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no stored operation, got %d", count)
		}
		if len(rec.Events()) != 0 {
			t.Error("expected no events for a failed operation")
		}
	})

	t.Run("unknown_destination_leaves_source_untouched", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		from := testutil.CreateTestAccount(t, db, 50000)

		_, err := svc.CreateOperation(ctx, transferInput(from.ID, "missing", 10000))
		testutil.AssertAppError(t, err, "REFERENCE_ERROR")
		testutil.AssertBalance(t, db, from.ID, 50000)
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 0)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		_, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 0))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_date", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 0)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		in := expenseInput(account.ID, cat.ID, 100)
		in.Date = "2024-02-30"
		_, err := svc.CreateOperation(ctx, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("transfer_to_same_account", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 1000)

		_, err := svc.CreateOperation(ctx, transferInput(account.ID, account.ID, 100))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		testutil.AssertBalance(t, db, account.ID, 1000)
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 1000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)

		_, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 100))
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
		testutil.AssertBalance(t, db, account.ID, 1000)
	})

	t.Run("unknown_category", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 1000)

		_, err := svc.CreateOperation(ctx, expenseInput(account.ID, "missing", 100))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("transfer_with_savings_category", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		from := testutil.CreateTestAccount(t, db, 1000)
		to := testutil.CreateTestAccount(t, db, 0)
		savings := testutil.CreateTestCategory(t, db, models.CategoryTypeSavings)

		in := transferInput(from.ID, to.ID, 400)
		in.CategoryID = strPtr(savings.ID)
		op, err := svc.CreateOperation(ctx, in)
		testutil.AssertNoError(t, err)
		if op.CategoryID == nil || *op.CategoryID != savings.ID {
			t.Error("expected savings category to be kept")
		}
	})

	t.Run("blank_references_are_absent", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 1000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		in := expenseInput(account.ID, cat.ID, 100)
		in.ToAccountID = strPtr("  ")
		op, err := svc.CreateOperation(ctx, in)
		testutil.AssertNoError(t, err)
		if op.ToAccountID != nil {
			t.Error("expected blank destination to be dropped")
		}
	})
}

func TestDeleteOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("restores_balance", func(t *testing.T) {
		db, store := setupStore(t)
		rec := &events.Recorder{}
		svc := NewOperationService(store, rec)
		account := testutil.CreateTestAccount(t, db, 100000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 15000))
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, 85000)

		testutil.AssertNoError(t, svc.DeleteOperation(ctx, op.ID))
		testutil.AssertBalance(t, db, account.ID, 100000)

		_, err = svc.GetOperation(ctx, op.ID)
		testutil.AssertAppError(t, err, "OPERATION_NOT_FOUND")

		types := rec.Types()
		if len(types) != 2 || types[1] != events.OperationDeleted {
			t.Errorf("expected created then deleted events, got %v", types)
		}
	})

	t.Run("reverses_transfer", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		from := testutil.CreateTestAccount(t, db, 50000)
		to := testutil.CreateTestAccount(t, db, 20000)

		op, err := svc.CreateOperation(ctx, transferInput(from.ID, to.ID, 10000))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteOperation(ctx, op.ID))
		testutil.AssertBalance(t, db, from.ID, 50000)
		testutil.AssertBalance(t, db, to.ID, 20000)
	})

	t.Run("not_found", func(t *testing.T) {
		_, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})

		err := svc.DeleteOperation(ctx, "missing")
		testutil.AssertAppError(t, err, "OPERATION_NOT_FOUND")
	})
}

func TestUpdateOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("changes_amount", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 100000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 15000))
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateOperation(ctx, op.ID, expenseInput(account.ID, cat.ID, 20000))
		testutil.AssertNoError(t, err)

		if updated.ID != op.ID {
			t.Errorf("expected id %s to be kept, got %s", op.ID, updated.ID)
		}
		testutil.AssertBalance(t, db, account.ID, 80000)
	})

	t.Run("moves_between_accounts", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		a := testutil.CreateTestAccount(t, db, 10000)
		b := testutil.CreateTestAccount(t, db, 10000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(a.ID, cat.ID, 3000))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateOperation(ctx, op.ID, expenseInput(b.ID, cat.ID, 3000))
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, a.ID, 10000)
		testutil.AssertBalance(t, db, b.ID, 7000)
	})

	t.Run("expense_to_transfer", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		a := testutil.CreateTestAccount(t, db, 50000)
		b := testutil.CreateTestAccount(t, db, 20000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(a.ID, cat.ID, 10000))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateOperation(ctx, op.ID, transferInput(a.ID, b.ID, 10000))
		testutil.AssertNoError(t, err)

		testutil.AssertBalance(t, db, a.ID, 40000)
		testutil.AssertBalance(t, db, b.ID, 30000)
	})

	t.Run("dangling_account_changes_nothing", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 100000)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		op, err := svc.CreateOperation(ctx, expenseInput(account.ID, cat.ID, 15000))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateOperation(ctx, op.ID, expenseInput("missing", cat.ID, 15000))
		testutil.AssertAppError(t, err, "REFERENCE_ERROR")

		testutil.AssertBalance(t, db, account.ID, 85000)
		stored, err := svc.GetOperation(ctx, op.ID)
		testutil.AssertNoError(t, err)
		if stored.AccountID != account.ID {
			t.Error("expected stored operation to be unchanged")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 0)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		_, err := svc.UpdateOperation(ctx, "missing", expenseInput(account.ID, cat.ID, 100))
		testutil.AssertAppError(t, err, "OPERATION_NOT_FOUND")
	})
}

func TestListOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("filters", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		a := testutil.CreateTestAccount(t, db, 0)
		b := testutil.CreateTestAccount(t, db, 0)
		groceries := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		testutil.CreateTestOperation(t, db, &models.Operation{Type: models.OperationTypeExpense, Amount: 100, AccountID: a.ID, CategoryID: strPtr(groceries.ID), Date: "2024-03-01"})
		testutil.CreateTestOperation(t, db, &models.Operation{Type: models.OperationTypeExpense, Amount: 200, AccountID: a.ID, CategoryID: strPtr(groceries.ID), Date: "2024-04-01"})
		testutil.CreateTestOperation(t, db, &models.Operation{Type: models.OperationTypeTransfer, Amount: 300, AccountID: b.ID, ToAccountID: strPtr(a.ID), Date: "2024-03-10"})

		page := pagination.PageRequest{Page: 1, PageSize: 20}

		result, err := svc.ListOperations(ctx, OperationFilter{Month: "2024-03"}, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 operations in March, got %d", result.TotalItems)
		}
		if len(result.Data) == 2 && result.Data[0].Date != "2024-03-10" {
			t.Errorf("expected newest first, got %s", result.Data[0].Date)
		}

		result, err = svc.ListOperations(ctx, OperationFilter{AccountID: strPtr(a.ID)}, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 operations touching account a, got %d", result.TotalItems)
		}

		transfer := models.OperationTypeTransfer
		result, err = svc.ListOperations(ctx, OperationFilter{Type: &transfer}, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 transfer, got %d", result.TotalItems)
		}

		result, err = svc.ListOperations(ctx, OperationFilter{FromDate: "2024-03-05", ToDate: "2024-03-31"}, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 operation in range, got %d", result.TotalItems)
		}

		result, err = svc.ListOperations(ctx, OperationFilter{CategoryID: strPtr(groceries.ID)}, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 grocery operations, got %d", result.TotalItems)
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		_, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})

		_, err := svc.ListOperations(ctx, OperationFilter{Month: "March"}, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("pagination", func(t *testing.T) {
		db, store := setupStore(t)
		svc := NewOperationService(store, events.Nop{})
		account := testutil.CreateTestAccount(t, db, 0)
		cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)
		for i := 0; i < 5; i++ {
			testutil.CreateTestOperation(t, db, &models.Operation{Type: models.OperationTypeExpense, Amount: 100, AccountID: account.ID, CategoryID: strPtr(cat.ID)})
		}

		result, err := svc.ListOperations(ctx, OperationFilter{}, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", result.TotalPages)
		}
	})
}

func TestConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	db, store := setupStore(t)
	svc := NewOperationService(store, events.Nop{})
	a := testutil.CreateTestAccount(t, db, 100000)
	b := testutil.CreateTestAccount(t, db, 100000)
	cat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOperation(ctx, transferInput(a.ID, b.ID, 1000))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.CreateOperation(ctx, expenseInput(b.ID, cat.ID, 500))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		testutil.AssertNoError(t, err)
	}

	testutil.AssertBalance(t, db, a.ID, 100000-workers*1000)
	testutil.AssertBalance(t, db, b.ID, 100000+workers*1000-workers*500)
}
