package validation_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stockbucket/backend/internal/api/request"
	"github.com/stockbucket/backend/internal/testutil"
	"github.com/stockbucket/backend/internal/validation"
)

func TestValidateUUID(t *testing.T) {
	t.Run("accepts a valid UUID", func(t *testing.T) {
		if err := validation.ValidateUUID(testutil.MakeID()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, id := range []string{"", "not-a-uuid", "1234", "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"} {
			if err := validation.ValidateUUID(id); !errors.Is(err, validation.ErrInvalidUUID) {
				t.Errorf("Expected ErrInvalidUUID for %q, got %v", id, err)
			}
		}
	})
}

func TestValidateChangeConfig(t *testing.T) {
	t.Run("empty entry list is valid", func(t *testing.T) {
		err := validation.ValidateChangeConfig(request.ChangeConfigRequest{})
		if err != nil {
			t.Errorf("Expected no error for empty entries, got %v", err)
		}
	})

	t.Run("valid entries pass", func(t *testing.T) {
		req := request.ChangeConfigRequest{Entries: []request.ConfigEntryRequest{
			{StockID: testutil.MakeID(), Quantity: 2},
			{StockID: testutil.MakeID(), Quantity: 0},
		}}
		if err := validation.ValidateChangeConfig(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		req := request.ChangeConfigRequest{Entries: []request.ConfigEntryRequest{
			{StockID: testutil.MakeID(), Quantity: -1},
		}}
		assertFieldError(t, validation.ValidateChangeConfig(req), "entries[0]")
	})

	t.Run("duplicate stock is rejected", func(t *testing.T) {
		stockID := testutil.MakeID()
		req := request.ChangeConfigRequest{Entries: []request.ConfigEntryRequest{
			{StockID: stockID, Quantity: 1},
			{StockID: stockID, Quantity: 2},
		}}
		assertFieldError(t, validation.ValidateChangeConfig(req), "entries[1]")
	})

	t.Run("invalid stock id is rejected", func(t *testing.T) {
		req := request.ChangeConfigRequest{Entries: []request.ConfigEntryRequest{
			{StockID: "bogus", Quantity: 1},
		}}
		assertFieldError(t, validation.ValidateChangeConfig(req), "entries[0]")
	})
}

func TestValidateTrade(t *testing.T) {
	t.Run("signed quantities are valid", func(t *testing.T) {
		for _, quantity := range []float64{1, -1, 0.5, -2.25} {
			req := request.TradeRequest{AssetID: testutil.MakeID(), Quantity: quantity}
			if err := validation.ValidateTrade(req); err != nil {
				t.Errorf("Expected no error for quantity %v, got %v", quantity, err)
			}
		}
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		req := request.TradeRequest{AssetID: testutil.MakeID(), Quantity: 0}
		assertFieldError(t, validation.ValidateTrade(req), "quantity")
	})

	t.Run("non-finite quantity is rejected", func(t *testing.T) {
		for _, quantity := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			req := request.TradeRequest{AssetID: testutil.MakeID(), Quantity: quantity}
			assertFieldError(t, validation.ValidateTrade(req), "quantity")
		}
	})

	t.Run("invalid asset id is rejected", func(t *testing.T) {
		req := request.TradeRequest{AssetID: "bogus", Quantity: 1}
		assertFieldError(t, validation.ValidateTrade(req), "assetId")
	})
}

func TestValidateCreateStock(t *testing.T) {
	t.Run("upper-case ticker with a name passes", func(t *testing.T) {
		req := request.CreateStockRequest{Name: "Apple Inc.", Ticker: "AAPL"}
		if err := validation.ValidateCreateStock(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("lower-case ticker is rejected", func(t *testing.T) {
		req := request.CreateStockRequest{Name: "Apple Inc.", Ticker: "aapl"}
		assertFieldError(t, validation.ValidateCreateStock(req), "ticker")
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		assertFieldError(t, validation.ValidateCreateStock(request.CreateStockRequest{Ticker: "AAPL"}), "name")
		assertFieldError(t, validation.ValidateCreateStock(request.CreateStockRequest{Name: "Apple"}), "ticker")
	})
}

func TestValidateCreateDescription(t *testing.T) {
	t.Run("short text is rejected", func(t *testing.T) {
		req := request.CreateDescriptionRequest{Text: "ok"}
		assertFieldError(t, validation.ValidateCreateDescription(req), "text")
	})

	t.Run("whitespace does not count toward the minimum", func(t *testing.T) {
		req := request.CreateDescriptionRequest{Text: "  a  "}
		assertFieldError(t, validation.ValidateCreateDescription(req), "text")
	})

	t.Run("long enough text passes", func(t *testing.T) {
		req := request.CreateDescriptionRequest{Text: "solid long-term pick"}
		if err := validation.ValidateCreateDescription(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})
}

func TestValidateCreateBucket(t *testing.T) {
	t.Run("blank name is rejected", func(t *testing.T) {
		assertFieldError(t, validation.ValidateCreateBucket(request.CreateBucketRequest{Name: "   "}), "name")
	})
}

func TestValidateCreateAccount(t *testing.T) {
	t.Run("blank name is rejected", func(t *testing.T) {
		assertFieldError(t, validation.ValidateCreateAccount(request.CreateAccountRequest{}), "accountName")
	})
}

func TestValidateCreateProfile(t *testing.T) {
	t.Run("blank user name is rejected", func(t *testing.T) {
		assertFieldError(t, validation.ValidateCreateProfile(request.CreateProfileRequest{}), "userName")
	})
}

func TestValidateLinkBank(t *testing.T) {
	t.Run("blank public token is rejected", func(t *testing.T) {
		assertFieldError(t, validation.ValidateLinkBank(request.LinkBankRequest{}), "publicToken")
	})
}

func TestError_Message(t *testing.T) {
	t.Run("fields appear in name order", func(t *testing.T) {
		err := &validation.Error{Fields: map[string]string{
			"ticker": "is required",
			"name":   "is required",
		}}

		want := "name: is required; ticker: is required"
		for i := 0; i < 10; i++ {
			if got := err.Error(); got != want {
				t.Fatalf("Expected %q, got %q", want, got)
			}
		}
	})
}

// assertFieldError fails the test unless err is a validation.Error carrying a
// message for the given field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected a validation error for %s, got nil", field)
	}

	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *validation.Error, got %T: %v", err, err)
	}

	if _, ok := vErr.Fields[field]; !ok {
		t.Errorf("Expected an error for field %s, got %v", field, vErr.Fields)
	}

	if !strings.Contains(err.Error(), field) && len(vErr.Fields) == 1 {
		t.Errorf("Expected error text to mention %s, got %q", field, err.Error())
	}
}
