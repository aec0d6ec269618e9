package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)

	w := doRequest(t, db, "POST", "/register", `{"username":"sherlock","password":"elementary"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	user, err := getUserByUsername(db, "sherlock")
	if err != nil {
		t.Fatalf("Registered user not found: %v", err)
	}

	if user.Password == "elementary" {
		t.Error("Expected password to be stored hashed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("elementary")); err != nil {
		t.Errorf("Stored hash does not match password: %v", err)
	}

	router := newRouter(db, true)
	req := httptest.NewRequest("POST", "/login", strings.NewReader("username=sherlock&password=elementary"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	if loc := rec.Header().Get("Location"); loc != "/welcome" {
		t.Errorf("Expected redirect to /welcome, got %q", loc)
	}
}

func TestLoginLegacyPlaintextRow(t *testing.T) {
	db := setupTestDB(t)

	// Rows imported from the old database hold plaintext passwords.
	if err := createUser(db, "watson", "221b"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	router := newRouter(db, true)
	req := httptest.NewRequest("POST", "/login", strings.NewReader("username=watson&password=221b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Expected redirect, got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := setupTestDB(t)

	if err := createUser(db, "watson", "221b"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	cases := []string{
		"username=watson&password=wrong",
		"username=nobody&password=221b",
	}

	for _, form := range cases {
		router := newRouter(db, true)
		req := httptest.NewRequest("POST", "/login", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected login view re-render for %q, got %d", form, rec.Code)
		}

		if !strings.Contains(rec.Body.String(), "Usuário ou senha inválidos") {
			t.Errorf("Expected inline error for %q", form)
		}
	}
}

func TestLoginFormRendersWithoutError(t *testing.T) {
	db := setupTestDB(t)

	w := doRequest(t, db, "GET", "/login", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if strings.Contains(w.Body.String(), "Usuário ou senha inválidos") {
		t.Error("Expected no error on the empty login form")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	db := setupTestDB(t)

	for _, body := range []string{`{}`, `{"username":"x"}`, `{"password":"y"}`} {
		w := doRequest(t, db, "POST", "/register", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", body, w.Code)
		}
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)

	w := doRequest(t, db, "POST", "/register", `{"username":"sherlock","password":"one"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	w = doRequest(t, db, "POST", "/register", `{"username":"sherlock","password":"two"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate username, got %d", w.Code)
	}
}
