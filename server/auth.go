package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginPage struct {
	Error string
}

func loginFormHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.HTML(w, http.StatusOK, "login", loginPage{})
}

// loginHandler checks a form-encoded username/password pair. On success it
// only redirects; no session or cookie is established. On failure it
// re-renders the login view with an inline error.
func loginHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			log.Errorw("could not parse login form", zap.Error(err))
			Renderer.HTML(w, http.StatusOK, "login", loginPage{Error: "Ocorreu um erro ao fazer login"})
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		user, err := authenticateUser(db, username, password)
		if err != nil {
			log.Errorw("could not look up user", "username", username, zap.Error(err))
			Renderer.HTML(w, http.StatusOK, "login", loginPage{Error: "Ocorreu um erro ao fazer login"})
			return
		}

		if user == nil {
			Renderer.HTML(w, http.StatusOK, "login", loginPage{Error: "Usuário ou senha inválidos"})
			return
		}

		http.Redirect(w, r, "/welcome", http.StatusFound)
	}
}

// authenticateUser returns the matching user, nil when the credentials do not
// match, and an error only on a store failure. Rows written by registration
// hold bcrypt hashes; rows imported from the old database hold plaintext and
// are compared directly.
func authenticateUser(db *gorm.DB, username, password string) (*User, error) {
	user, err := getUserByUsername(db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
		return user, nil
	}

	if user.Password == password {
		return user, nil
	}

	return nil, nil
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Dados incompletos"})
			return
		}

		if req.Username == "" || req.Password == "" {
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Dados incompletos"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Errorw("could not hash password", zap.Error(err))
			Renderer.JSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Erro ao registrar usuário"})
			return
		}

		if err := createUser(db, req.Username, string(hash)); err != nil {
			log.Errorw("could not create user", "username", req.Username, zap.Error(err))
			Renderer.JSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Usuário já existe"})
			return
		}

		Renderer.JSON(w, http.StatusCreated, apiResponse{Success: true, Message: "Usuário registrado com sucesso"})
	}
}
