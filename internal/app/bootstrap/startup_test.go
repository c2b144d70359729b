package bootstrap

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureSeedAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := ensureSeedAdmin(ctx, db, "admin@test.com", "s3cret-pass", testLogger())
	if err != nil {
		t.Fatalf("ensureSeedAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"email": "admin@test.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
	if user.Status != "active" {
		t.Errorf("expected status 'active', got %q", user.Status)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored password hash does not match: %v", err)
	}
}

func TestEnsureSeedAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "Asha", "asha@test.com", "user")

	err := ensureSeedAdmin(ctx, db, "asha@test.com", "ignored", testLogger())
	if err != nil {
		t.Fatalf("ensureSeedAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin' after promotion, got %q", user.Role)
	}
}

func TestEnsureSeedAdmin_AlreadyAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Root", "root@test.com")

	// Should succeed without touching the record.
	err := ensureSeedAdmin(ctx, db, "root@test.com", "whatever", testLogger())
	if err != nil {
		t.Fatalf("ensureSeedAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
}

func TestEnsureSeedAdmin_MissingPasswordSkipsCreation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := ensureSeedAdmin(ctx, db, "nobody@test.com", "", testLogger())
	if err != nil {
		t.Fatalf("ensureSeedAdmin failed: %v", err)
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users created, got %d", n)
	}
}
