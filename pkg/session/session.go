package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"igclient/pkg/logger"
)

// Session is the persisted authenticated state of a client. Restoring
// it skips the login sequence for the cookie lifetime.
type Session struct {
	Username  string    `json:"username"`
	UserID    int64     `json:"user_id"`
	DeviceID  string    `json:"device_id"`
	UUID      string    `json:"uuid"`
	RankToken string    `json:"rank_token"`
	CSRFToken string    `json:"csrf_token"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// Cookie is the serializable subset of http.Cookie the session keeps.
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Domain  string    `json:"domain"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires,omitempty"`
}

// SetCookies captures the cookies a jar holds for the given URL.
func (s *Session) SetCookies(u *url.URL, jar http.CookieJar) {
	cookies := jar.Cookies(u)
	s.Cookies = make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: c.Expires,
		})
	}
}

// RestoreCookies pushes the stored cookies back into a jar.
func (s *Session) RestoreCookies(u *url.URL, jar http.CookieJar) {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: c.Expires,
		})
	}
	jar.SetCookies(u, cookies)
}

// Manager handles session persistence
type Manager struct {
	sessionPath string
	logger      logger.Logger
}

// NewManager creates a session manager for the given account
func NewManager(username string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	sessionsDir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &Manager{
		sessionPath: filepath.Join(sessionsDir, fmt.Sprintf("%s.session.json", username)),
		logger:      logger.GetLogger(),
	}, nil
}

// Load loads an existing session. A missing file is not an error; it
// returns (nil, nil).
func (m *Manager) Load() (*Session, error) {
	file, err := os.Open(m.sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	var sess Session
	if err := json.NewDecoder(file).Decode(&sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	m.logger.InfoWithFields("Session loaded", map[string]interface{}{
		"username":   sess.Username,
		"user_id":    sess.UserID,
		"updated_at": sess.UpdatedAt,
	})

	return &sess, nil
}

// Save writes the session to disk atomically with owner-only
// permissions.
func (m *Manager) Save(sess *Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	sess.UpdatedAt = time.Now()
	if sess.Version == 0 {
		sess.Version = 1
	}

	tempPath := m.sessionPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(sess); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, m.sessionPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	m.logger.DebugWithFields("Session saved", map[string]interface{}{
		"username": sess.Username,
		"user_id":  sess.UserID,
	})

	return nil
}

// Delete removes the session file
func (m *Manager) Delete() error {
	if err := os.Remove(m.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.logger.Info("Session deleted")
	return nil
}

// Exists checks if a session file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.sessionPath)
	return err == nil
}

// Age returns how long ago the session was last saved.
func (m *Manager) Age() (time.Duration, error) {
	sess, err := m.Load()
	if err != nil {
		return 0, err
	}
	if sess == nil {
		return 0, fmt.Errorf("no session found")
	}
	return time.Since(sess.UpdatedAt), nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "igclient")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "igclient")
		}
	case "darwin":
		// macOS: ~/Library/Application Support
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "igclient")
	case "windows":
		// Windows: %APPDATA%
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "igclient")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
