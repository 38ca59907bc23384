package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"recipebox/store/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Messages shown to the user on a failed register or login.
const (
	MsgEmailTaken         = "User with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
)

// Profile is the session record. It never carries a password.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Account is a registered user as kept in the users list.
type Account struct {
	Profile
	Password string `json:"password"`
}

type AuthState struct {
	User  *Profile  `json:"user"`
	Users []Account `json:"users"`
	Error string    `json:"error,omitempty"`
}

// Authenticated reports whether a user is signed in.
func (s AuthState) Authenticated() bool { return s.User != nil }

type AuthAction interface{ authAction() }

// Register carries an account whose password is already in its stored form.
type Register struct{ Account Account }

type Login struct{ Email, Password string }

type Logout struct{}

func (Register) authAction() {}
func (Login) authAction()    {}
func (Logout) authAction()   {}

// ReduceAuth returns the state after applying a. A rejected register or login returns
// ErrEmailTaken or ErrInvalidCredentials together with a state that only differs from s
// in its Error message.
func ReduceAuth(s AuthState, a AuthAction, scheme PasswordScheme) (AuthState, error) {
	switch a := a.(type) {
	case Register:
		if slices.ContainsFunc(s.Users, func(u Account) bool { return u.Email == a.Account.Email }) {
			s.Error = MsgEmailTaken
			return s, ErrEmailTaken
		}
		profile := a.Account.Profile
		return AuthState{
			User:  &profile,
			Users: append(slices.Clone(s.Users), a.Account),
		}, nil

	case Login:
		i := slices.IndexFunc(s.Users, func(u Account) bool {
			return u.Email == a.Email && scheme.Verify(a.Password, u.Password)
		})
		if i < 0 {
			s.Error = MsgInvalidCredentials
			return s, ErrInvalidCredentials
		}
		profile := s.Users[i].Profile
		return AuthState{User: &profile, Users: s.Users}, nil

	case Logout:
		return AuthState{Users: s.Users}, nil
	}
	return s, nil
}

// Auth is the persisted session and registered-users container. Safe for concurrent use.
type Auth struct {
	mu     sync.RWMutex
	state  AuthState
	user   record[*Profile]
	users  record[[]Account]
	scheme PasswordScheme
}

// NewAuth binds the session to userState and the registered list to usersState.
// A nil scheme stores passwords as plain text.
func NewAuth(userState, usersState storage.State, scheme PasswordScheme) *Auth {
	if scheme == nil {
		scheme = Plaintext{}
	}
	return &Auth{
		state:  AuthState{Users: []Account{}},
		user:   record[*Profile]{name: KeyUser, state: userState},
		users:  record[[]Account]{name: KeyUsers, state: usersState},
		scheme: scheme,
	}
}

func (a *Auth) Load(ctx context.Context) error {
	user, err := a.user.load(ctx, nil)
	if err != nil {
		return err
	}
	users, err := a.users.load(ctx, []Account{})
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = AuthState{User: user, Users: users}
	slog.Info("STORE: Auth loaded", "authenticated", user != nil, "users", len(users))
	return nil
}

// Dispatch reduces act into the auth state and persists whatever records changed.
// Rejections still update the in-memory error message.
func (a *Auth) Dispatch(ctx context.Context, act AuthAction) (AuthState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := ReduceAuth(a.state, act, a.scheme)
	if err != nil {
		a.state = next
		return a.snapshot(), err
	}
	if err := a.persist(ctx, act, a.state, next); err != nil {
		slog.Error("STORE: Failed to persist auth", "action", actionName(act), "error", err)
		return a.snapshot(), err
	}
	a.state = next
	return a.snapshot(), nil
}

// persist writes the records act touches. A register that saves the account list but not
// the session restores the previous list so storage matches the unchanged memory state.
func (a *Auth) persist(ctx context.Context, act AuthAction, prev, next AuthState) error {
	switch act.(type) {
	case Register:
		if err := a.users.save(ctx, next.Users); err != nil {
			return err
		}
		if err := a.user.save(ctx, next.User); err != nil {
			if rerr := a.users.save(ctx, prev.Users); rerr != nil {
				return errors.Join(err, fmt.Errorf("roll back users: %w", rerr))
			}
			return err
		}
		return nil
	case Login:
		return a.user.save(ctx, next.User)
	case Logout:
		return a.user.clear(ctx)
	}
	return nil
}

// Register stores the account with its password in the configured scheme and signs it in.
func (a *Auth) Register(ctx context.Context, acct Account) error {
	stored, err := a.scheme.Hash(acct.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acct.Password = stored
	_, err = a.Dispatch(ctx, Register{Account: acct})
	return err
}

func (a *Auth) Login(ctx context.Context, email, password string) error {
	_, err := a.Dispatch(ctx, Login{Email: email, Password: password})
	return err
}

func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.Dispatch(ctx, Logout{})
	return err
}

func (a *Auth) Authenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Authenticated()
}

// State returns a copy of the auth state.
func (a *Auth) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot()
}

func (a *Auth) snapshot() AuthState {
	s := AuthState{Users: slices.Clone(a.state.Users), Error: a.state.Error}
	if a.state.User != nil {
		u := *a.state.User
		s.User = &u
	}
	return s
}
