package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"ArmeriaCorpAdmin/internal/logger"
	"ArmeriaCorpAdmin/internal/session"
)

type UserSession struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	LastLoginTime string `json:"last_login_time"`
	ClientIP      string `json:"client_ip"`
	IsLoggedIn    bool   `json:"is_logged_in"`
}

// AuthService validates credentials against the users table and keeps
// the live session registry in memory, one session per user. Session
// ids and idle expiry are delegated to the session manager.
type AuthService struct {
	db             *sql.DB
	maxUsers       int
	sessionTimeout time.Duration
	sessions       *session.Manager
	users          map[string]*UserSession // keyed by user id
	mu             sync.Mutex
	stopCh         chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers, sessionTimeoutMinutes int) *AuthService {
	if maxUsers <= 0 {
		maxUsers = 50
	}
	if sessionTimeoutMinutes <= 0 {
		sessionTimeoutMinutes = 120
	}
	return &AuthService{
		db:             db,
		maxUsers:       maxUsers,
		sessionTimeout: time.Duration(sessionTimeoutMinutes) * time.Minute,
		sessions:       session.NewManager(),
		users:          make(map[string]*UserSession),
		stopCh:         make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

func (a *AuthService) Login(username, password, clientIP string) (*UserSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, us := range a.users {
		if us.Email == username && us.IsLoggedIn {
			if a.sessions.Touch(us.SessionID, a.sessionTimeout) {
				us.LastLoginTime = time.Now().Format(time.RFC3339)
				us.ClientIP = clientIP
				logger.Audit("User %s re-logged in, returning existing session", username)
				return us, nil
			}
			// Registry entry outlived its session; drop it and fall
			// through to a fresh login.
			delete(a.users, us.UserID)
			break
		}
	}

	if len(a.users) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	var (
		userID, name, email string
		roleName            sql.NullString
		userStatus          sql.NullString
	)
	query := `
		SELECT u.id, u.employee_name, u.email, u.status, r.name
		FROM users u
		LEFT JOIN user_roles ur ON u.id = ur.user_id
		LEFT JOIN roles r ON ur.role_id = r.id
		WHERE u.email = $1 AND u.password = crypt($2, u.password)
	`
	err := a.db.QueryRow(query, username, password).Scan(&userID, &name, &email, &userStatus, &roleName)
	if err == sql.ErrNoRows {
		return nil, errors.New("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("login query: %w", err)
	}
	if userStatus.Valid && userStatus.String != "ACTIVE" {
		return nil, errors.New("user is not active")
	}

	sess := a.sessions.CreateSession(userID, a.sessionTimeout)
	us := &UserSession{
		SessionID:     sess.ID,
		UserID:        userID,
		Name:          name,
		Email:         email,
		Role:          roleName.String,
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
		IsLoggedIn:    true,
	}
	a.users[userID] = us
	logger.Audit("User %s logged in from %s", username, clientIP)
	return us, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for userID, us := range a.users {
		if us.SessionID == sessionID {
			a.sessions.DeleteSession(sessionID)
			delete(a.users, userID)
			logger.Audit("User %s logged out", us.Email)
			return nil
		}
	}
	return errors.New("session not found")
}

// SessionForUser returns the live session for a user id, extending its
// idle expiry. Handlers call this through the session middleware.
func (a *AuthService) SessionForUser(userID string) (*UserSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	us, ok := a.users[userID]
	if !ok || !us.IsLoggedIn {
		return nil, false
	}
	if !a.sessions.Touch(us.SessionID, a.sessionTimeout) {
		delete(a.users, userID)
		return nil, false
	}
	return us, true
}

func (a *AuthService) ActiveSessions() []UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]UserSession, 0, len(a.users))
	for _, s := range a.users {
		out = append(out, *s)
	}
	return out
}

// sessionCleaner evicts registry entries whose sessions idled out.
func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.sessions.CleanupExpiredSessions()
			a.mu.Lock()
			for userID, us := range a.users {
				if _, alive := a.sessions.GetSession(us.SessionID); !alive {
					logger.Audit("Session for %s expired", us.Email)
					delete(a.users, userID)
				}
			}
			a.mu.Unlock()
		}
	}
}

// ---- global wiring, set once by the app manager ----

var (
	globalAuth *AuthService
	globalOnce sync.Once
)

func SetGlobalAuthService(svc *AuthService) {
	globalOnce.Do(func() {
		globalAuth = svc
	})
}

// ValidateSession resolves the live session for a user id through the
// globally wired auth service.
func ValidateSession(userID string) (*UserSession, bool) {
	if globalAuth == nil || userID == "" {
		return nil, false
	}
	return globalAuth.SessionForUser(userID)
}

func GetActiveSessions() []UserSession {
	if globalAuth == nil {
		return nil
	}
	return globalAuth.ActiveSessions()
}
