package service_test

import (
	"errors"
	"testing"

	"github.com/stockbucket/backend/internal/apperrors"
	"github.com/stockbucket/backend/internal/testutil"
)

func TestProfileService_Create(t *testing.T) {
	t.Run("creates a profile with the given user name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProfileService(t, db)

		profile, err := svc.Create("alice")
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
		if profile.UserName != "alice" {
			t.Errorf("Expected user name alice, got %s", profile.UserName)
		}

		fetched, err := svc.Get(profile.ID)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if fetched.ID != profile.ID {
			t.Errorf("Expected profile %s, got %s", profile.ID, fetched.ID)
		}
	})

	t.Run("empty user name is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProfileService(t, db)

		_, err := svc.Create("")
		if !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got %v", err)
		}
	})
}

// TestProfileService_DefaultAccount tests lazy creation of the default
// trading account.
//
// WHY: Clients never create the default account explicitly; the first request
// that needs it must materialize it, and repeated requests must keep handing
// back the same account rather than piling up new ones.
func TestProfileService_DefaultAccount(t *testing.T) {
	t.Run("first call creates, later calls reuse", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProfileService(t, db)
		profile := testutil.CreateProfile(t, db)

		first, err := svc.DefaultAccount(profile.ID)
		if err != nil {
			t.Fatalf("DefaultAccount() returned unexpected error: %v", err)
		}
		if first.AccountName != "default" {
			t.Errorf("Expected account name default, got %s", first.AccountName)
		}

		second, err := svc.DefaultAccount(profile.ID)
		if err != nil {
			t.Fatalf("DefaultAccount() returned unexpected error: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("Expected the same account, got %s and %s", first.ID, second.ID)
		}

		testutil.AssertRowCount(t, db, "trading_account", 1)
	})

	t.Run("other accounts do not shadow the default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProfileService(t, db)
		profile := testutil.CreateProfile(t, db)
		testutil.NewAccount(profile.ID).WithAccountName("savings").Build(t, db)

		account, err := svc.DefaultAccount(profile.ID)
		if err != nil {
			t.Fatalf("DefaultAccount() returned unexpected error: %v", err)
		}
		if account.AccountName != "default" {
			t.Errorf("Expected account name default, got %s", account.AccountName)
		}

		testutil.AssertRowCount(t, db, "trading_account", 2)
	})

	t.Run("each profile gets its own default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProfileService(t, db)
		p1 := testutil.CreateProfile(t, db)
		p2 := testutil.CreateProfile(t, db)

		a1, err := svc.DefaultAccount(p1.ID)
		if err != nil {
			t.Fatalf("DefaultAccount() returned unexpected error: %v", err)
		}
		a2, err := svc.DefaultAccount(p2.ID)
		if err != nil {
			t.Fatalf("DefaultAccount() returned unexpected error: %v", err)
		}
		if a1.ID == a2.ID {
			t.Error("Expected distinct default accounts per profile")
		}
	})
}
