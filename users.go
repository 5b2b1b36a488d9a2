package cocktailsgram

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the data needed to register an account.
type SignupInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func (in SignupInput) validate() error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return validationError{"Некорректный адрес почты"}
	}
	switch {
	case in.Username == "" || utf8.RuneCountInString(in.Username) > 150:
		return validationError{"Имя пользователя должно содержать от 1 до 150 символов"}
	case in.FirstName == "" || in.LastName == "":
		return validationError{"Укажите имя и фамилию"}
	case len(in.Password) < 8:
		return validationError{"Пароль должен содержать не менее 8 символов"}
	}
	return nil
}

// CreateUser registers a new account. Email and username must be unique.
func (s *Store) CreateUser(in SignupInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := in.validate(); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.Exec(`INSERT INTO users (email, username, first_name, last_name, password_hash) VALUES (?, ?, ?, ?, ?)`,
		in.Email, in.Username, in.FirstName, in.LastName, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicate
		}
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Email: in.Email, Username: in.Username, FirstName: in.FirstName, LastName: in.LastName}, nil
}

// Authenticate returns the user with the given email if password matches.
func (s *Store) Authenticate(email, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRow(`SELECT id, email, username, first_name, last_name, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &hash)
	if err == ErrNotFound {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(id int64) (User, error) {
	var u User
	err := s.db.QueryRow(`SELECT id, email, username, first_name, last_name FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName)
	return u, err
}
