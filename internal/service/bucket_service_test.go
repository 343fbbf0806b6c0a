package service_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/service"
	"github.com/stockbucket/backend/internal/testutil"
)

func TestBucketService_Create(t *testing.T) {
	t.Run("new bucket starts with the default endowment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)

		bucket, err := svc.Create("Tech", false, profile.ID)
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		if bucket.Available != service.DefaultEndowment {
			t.Errorf("Expected available %v, got %v", service.DefaultEndowment, bucket.Available)
		}
		if bucket.OwnerID != profile.ID {
			t.Errorf("Expected owner %s, got %s", profile.ID, bucket.OwnerID)
		}
	})

	t.Run("duplicate name for the same owner is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)

		if _, err := svc.Create("Tech", false, profile.ID); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		_, err := svc.Create("Tech", false, profile.ID)
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

// TestBucketService_Access tests the owned/public visibility rules.
//
// WHY: A private bucket must be indistinguishable from a missing one for
// everyone but its owner, and public visibility must never grant write
// access.
func TestBucketService_Access(t *testing.T) {
	t.Run("private bucket is invisible to other profiles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		owner := testutil.CreateProfile(t, db)
		other := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, owner.ID)

		if _, err := svc.Get(bucket.ID, owner.ID); err != nil {
			t.Fatalf("owner Get() returned unexpected error: %v", err)
		}

		_, err := svc.Get(bucket.ID, other.ID)
		if !errors.Is(err, apperrors.ErrBucketNotFound) {
			t.Errorf("Expected ErrBucketNotFound, got %v", err)
		}
	})

	t.Run("public bucket is readable but not writable by other profiles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		owner := testutil.CreateProfile(t, db)
		other := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(owner.ID).Public().Build(t, db)

		if _, err := svc.Get(bucket.ID, other.ID); err != nil {
			t.Fatalf("Get() on public bucket returned unexpected error: %v", err)
		}

		_, err := svc.SellAll(bucket.ID, other.ID)
		if !errors.Is(err, apperrors.ErrBucketNotFound) {
			t.Errorf("Expected ErrBucketNotFound for non-owner SellAll, got %v", err)
		}
	})

	t.Run("accessible list holds owned and public buckets only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		owner := testutil.CreateProfile(t, db)
		other := testutil.CreateProfile(t, db)

		mine := testutil.CreateBucket(t, db, owner.ID)
		shared := testutil.NewBucket(other.ID).Public().Build(t, db)
		testutil.CreateBucket(t, db, other.ID) // private, invisible

		buckets, err := svc.AccessibleTo(owner.ID)
		if err != nil {
			t.Fatalf("AccessibleTo() returned unexpected error: %v", err)
		}

		if len(buckets) != 2 {
			t.Fatalf("Expected 2 accessible buckets, got %d", len(buckets))
		}
		for _, b := range buckets {
			if b.ID != mine.ID && b.ID != shared.ID {
				t.Errorf("Unexpected bucket in accessible list: %s", b.ID)
			}
		}
	})
}

// TestBucketService_ValueOn tests point-in-time valuation.
//
// WHY: Valuation is the arithmetic core everything else (liquidation,
// trading) builds on. Cash plus active positions at their latest quote must
// come out exactly.
func TestBucketService_ValueOn(t *testing.T) {
	t.Run("all-cash bucket is worth its available balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).WithAvailable(750).Build(t, db)

		value, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}
		if value != 750 {
			t.Errorf("Expected value 750, got %v", value)
		}
	})

	t.Run("open positions are valued at their latest quote", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).WithAvailable(100).Build(t, db)
		stock := testutil.CreateStockWithQuote(t, db, 40)
		testutil.NewPosition(bucket.ID, stock.ID).WithQuantity(3).StartedDaysAgo(5).Build(t, db)

		value, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}
		if value != 100+3*40 {
			t.Errorf("Expected value 220, got %v", value)
		}
	})

	t.Run("positions without any quote contribute nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).WithAvailable(100).Build(t, db)
		stock := testutil.CreateStock(t, db) // no quotes
		testutil.NewPosition(bucket.ID, stock.ID).WithQuantity(3).Build(t, db)

		value, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}
		if value != 100 {
			t.Errorf("Expected value 100, got %v", value)
		}
	})

	t.Run("historical date excludes positions opened later", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).WithAvailable(100).Build(t, db)

		stock := testutil.CreateStock(t, db)
		testutil.NewQuote(stock.ID).DaysAgo(10).WithValue(40).Build(t, db)
		testutil.NewPosition(bucket.ID, stock.ID).WithQuantity(2).Build(t, db) // opened today

		weekAgo := time.Now().UTC().AddDate(0, 0, -7)
		value, err := svc.ValueOn(bucket.ID, profile.ID, &weekAgo)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}
		if value != 100 {
			t.Errorf("Expected value 100 a week ago, got %v", value)
		}
	})

	t.Run("NaN position value fails instead of counting as zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).WithAvailable(100).Build(t, db)

		// Inf * 0 = NaN, the shape corrupt upstream data takes.
		stock := testutil.CreateStock(t, db)
		testutil.NewQuote(stock.ID).WithValue(math.Inf(1)).Build(t, db)
		testutil.NewPosition(bucket.ID, stock.ID).WithQuantity(0).Build(t, db)

		_, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if !errors.Is(err, apperrors.ErrValuation) {
			t.Errorf("Expected ErrValuation, got %v", err)
		}
	})

	t.Run("future date is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(profile.ID).Build(t, db)
		stock := testutil.CreateStockWithQuote(t, db, 40)
		testutil.NewPosition(bucket.ID, stock.ID).Build(t, db)

		tomorrow := time.Now().UTC().AddDate(0, 0, 1)
		_, err := svc.ValueOn(bucket.ID, profile.ID, &tomorrow)
		if !errors.Is(err, apperrors.ErrFutureDate) {
			t.Errorf("Expected ErrFutureDate, got %v", err)
		}
	})
}

// TestBucketService_ChangeConfig tests atomic re-composition.
//
// WHY: ChangeConfig is the only way money moves between cash and positions
// inside a bucket. The liquidate-then-buy sequence must be atomic: either the
// whole new composition is affordable or the bucket is left untouched.
func TestBucketService_ChangeConfig(t *testing.T) {
	t.Run("buys the requested composition from cash", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID) // available 1000
		stock := testutil.CreateStockWithQuote(t, db, 100)

		updated, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 2},
		})
		if err != nil {
			t.Fatalf("ChangeConfig() returned unexpected error: %v", err)
		}

		if updated.Available != 800 {
			t.Errorf("Expected available 800, got %v", updated.Available)
		}

		positions, err := svc.Positions(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 1 || positions[0].Quantity != 2 {
			t.Fatalf("Expected one open position of 2 shares, got %+v", positions)
		}
	})

	t.Run("recomposition liquidates before buying", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		if _, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 2},
		}); err != nil {
			t.Fatalf("first ChangeConfig() returned unexpected error: %v", err)
		}

		// 800 cash + 200 liquidated - 500 bought = 500
		updated, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 5},
		})
		if err != nil {
			t.Fatalf("second ChangeConfig() returned unexpected error: %v", err)
		}

		if updated.Available != 500 {
			t.Errorf("Expected available 500, got %v", updated.Available)
		}

		positions, err := svc.Positions(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 1 || positions[0].Quantity != 5 {
			t.Fatalf("Expected one open position of 5 shares, got %+v", positions)
		}
	})

	t.Run("unaffordable composition rolls back completely", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		if _, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 2},
		}); err != nil {
			t.Fatalf("setup ChangeConfig() returned unexpected error: %v", err)
		}

		// 800 + 200 liquidated = 1000 total, 11 shares cost 1100
		_, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 11},
		})
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}

		// Bucket must be byte-for-byte as before the attempt.
		current, err := svc.Get(bucket.ID, profile.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if current.Available != 800 {
			t.Errorf("Expected available still 800 after rollback, got %v", current.Available)
		}

		positions, err := svc.Positions(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 1 || positions[0].Quantity != 2 {
			t.Fatalf("Expected the original open position of 2 shares, got %+v", positions)
		}
	})

	t.Run("failed attempt is repeatable with identical outcome", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		for i := 0; i < 3; i++ {
			_, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
				{StockID: stock.ID, Quantity: 20},
			})
			if !errors.Is(err, apperrors.ErrInsufficientFunds) {
				t.Fatalf("attempt %d: expected ErrInsufficientFunds, got %v", i, err)
			}
		}

		current, err := svc.Get(bucket.ID, profile.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if current.Available != service.DefaultEndowment {
			t.Errorf("Expected available unchanged at %v, got %v", service.DefaultEndowment, current.Available)
		}
		testutil.AssertRowCount(t, db, "position", 0)
	})

	t.Run("rejects duplicate stocks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 10)

		_, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 1},
			{StockID: stock.ID, Quantity: 2},
		})
		if !errors.Is(err, apperrors.ErrDuplicateStock) {
			t.Errorf("Expected ErrDuplicateStock, got %v", err)
		}
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 10)

		_, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: -1},
		})
		if !errors.Is(err, apperrors.ErrNegativeQuantity) {
			t.Errorf("Expected ErrNegativeQuantity, got %v", err)
		}
	})

	t.Run("empty composition liquidates to all cash", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		if _, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 4},
		}); err != nil {
			t.Fatalf("setup ChangeConfig() returned unexpected error: %v", err)
		}

		updated, err := svc.ChangeConfig(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ChangeConfig() returned unexpected error: %v", err)
		}

		if updated.Available != service.DefaultEndowment {
			t.Errorf("Expected available back at %v, got %v", service.DefaultEndowment, updated.Available)
		}

		positions, err := svc.Positions(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 0 {
			t.Errorf("Expected no open positions, got %d", len(positions))
		}
	})
}

// TestBucketService_SellAll tests full liquidation.
//
// WHY: Liquidation must be value-neutral: the bucket is worth the same the
// instant after selling everything as the instant before.
func TestBucketService_SellAll(t *testing.T) {
	t.Run("liquidation is value neutral", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		if _, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 3},
		}); err != nil {
			t.Fatalf("ChangeConfig() returned unexpected error: %v", err)
		}

		before, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}

		sold, err := svc.SellAll(bucket.ID, profile.ID)
		if err != nil {
			t.Fatalf("SellAll() returned unexpected error: %v", err)
		}

		if sold.Available != before {
			t.Errorf("Expected available %v after liquidation, got %v", before, sold.Available)
		}

		after, err := svc.ValueOn(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("ValueOn() returned unexpected error: %v", err)
		}
		if after != before {
			t.Errorf("Expected value %v after liquidation, got %v", before, after)
		}

		positions, err := svc.Positions(bucket.ID, profile.ID, nil)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 0 {
			t.Errorf("Expected no open positions after SellAll, got %d", len(positions))
		}
	})

	t.Run("closed positions keep their history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)
		stock := testutil.CreateStockWithQuote(t, db, 100)

		if _, err := svc.ChangeConfig(bucket.ID, profile.ID, []service.ConfigEntry{
			{StockID: stock.ID, Quantity: 3},
		}); err != nil {
			t.Fatalf("ChangeConfig() returned unexpected error: %v", err)
		}

		if _, err := svc.SellAll(bucket.ID, profile.ID); err != nil {
			t.Fatalf("SellAll() returned unexpected error: %v", err)
		}

		// The row survives, closed.
		testutil.AssertRowCount(t, db, "position", 1)

		today := time.Now().UTC()
		positions, err := svc.Positions(bucket.ID, profile.ID, &today)
		if err != nil {
			t.Fatalf("Positions() returned unexpected error: %v", err)
		}
		if len(positions) != 1 || positions[0].EndDate == nil {
			t.Fatalf("Expected one closed position active today, got %+v", positions)
		}
	})
}

func TestBucketService_Descriptions(t *testing.T) {
	t.Run("add, edit and delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)

		description, err := svc.AddDescription(bucket.ID, profile.ID, "long-term growth", true)
		if err != nil {
			t.Fatalf("AddDescription() returned unexpected error: %v", err)
		}

		edited, err := svc.EditDescription(description.ID, profile.ID, "dividend income")
		if err != nil {
			t.Fatalf("EditDescription() returned unexpected error: %v", err)
		}
		if edited.Text != "dividend income" {
			t.Errorf("Expected edited text, got %q", edited.Text)
		}

		if err := svc.DeleteDescription(description.ID, profile.ID); err != nil {
			t.Fatalf("DeleteDescription() returned unexpected error: %v", err)
		}

		descriptions, err := svc.Descriptions(bucket.ID, profile.ID)
		if err != nil {
			t.Fatalf("Descriptions() returned unexpected error: %v", err)
		}
		if len(descriptions) != 0 {
			t.Errorf("Expected no descriptions, got %d", len(descriptions))
		}
	})

	t.Run("too short text is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		profile := testutil.CreateProfile(t, db)
		bucket := testutil.CreateBucket(t, db, profile.ID)

		_, err := svc.AddDescription(bucket.ID, profile.ID, "ok", true)
		if !errors.Is(err, apperrors.ErrDescriptionTooShort) {
			t.Errorf("Expected ErrDescriptionTooShort, got %v", err)
		}
	})

	t.Run("non-owner cannot edit descriptions on a public bucket", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBucketService(t, db)
		owner := testutil.CreateProfile(t, db)
		other := testutil.CreateProfile(t, db)
		bucket := testutil.NewBucket(owner.ID).Public().Build(t, db)

		description, err := svc.AddDescription(bucket.ID, owner.ID, "value picks", true)
		if err != nil {
			t.Fatalf("AddDescription() returned unexpected error: %v", err)
		}

		_, err = svc.EditDescription(description.ID, other.ID, "mine now")
		if !errors.Is(err, apperrors.ErrDescriptionNotFound) {
			t.Errorf("Expected ErrDescriptionNotFound, got %v", err)
		}
	})
}
