package services

import (
	"testing"

	"plutoa/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("New.User@Example.com", "secret123", "New", "User")
		testutil.AssertNoError(t, err)
		if user.Email != "new.user@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Password == "secret123" {
			t.Error("expected password to be hashed")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dupe@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateUser("dupe@example.com", "other456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "secret123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created, err := svc.CreateUser("login@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		user, err := svc.AttemptLogin("login@example.com", "secret123")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %d, got %d", created.ID, user.ID)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login time to be recorded")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("wrongpass@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("wrongpass@example.com", "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email_same_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("ghost@example.com", "whatever")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}
