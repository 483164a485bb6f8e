package auth

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Student is one roster entry. Only students on the roster may
// register.
type Student struct {
	RegID string `json:"reg_id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Roster reads the student roster JSON file fresh on each lookup.
type Roster struct {
	path string
}

// NewRoster creates a roster over the given file path.
func NewRoster(path string) *Roster {
	return &Roster{path: path}
}

// Find returns the student matching both registration ID and email, or
// nil when absent. A missing or unreadable roster matches nobody.
func (r *Roster) Find(regID, email string) *Student {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}

	var students []Student
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil
	}

	for i := range students {
		if students[i].RegID == regID && students[i].Email == email {
			return &students[i]
		}
	}
	return nil
}

type userEntry struct {
	RegID    string `json:"reg_id"`
	Password string `json:"password"`
}

// UserStore persists registered users and their password hashes in a
// JSON file, rewritten whole on each change.
type UserStore struct {
	path string
	mu   sync.Mutex
}

// NewUserStore creates a user store over the given file path.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

func (s *UserStore) load() []userEntry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var users []userEntry
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil
	}
	return users
}

func (s *UserStore) save(users []userEntry) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Save upserts the user's password hash.
func (s *UserStore) Save(regID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	kept := users[:0]
	for _, u := range users {
		if u.RegID != regID {
			kept = append(kept, u)
		}
	}
	kept = append(kept, userEntry{RegID: regID, Password: passwordHash})
	return s.save(kept)
}

// Exists reports whether the user has registered.
func (s *UserStore) Exists(regID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.load() {
		if u.RegID == regID {
			return true
		}
	}
	return false
}

// PasswordHash returns the stored hash, or "" for unknown users.
func (s *UserStore) PasswordHash(regID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.load() {
		if u.RegID == regID {
			return u.Password
		}
	}
	return ""
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// OTPStore keeps pending one-time codes in memory with a fixed expiry.
// Codes do not survive a restart; the student simply requests another.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	ttl     time.Duration
}

// NewOTPStore creates an OTP store. TTL defaults to 10 minutes.
func NewOTPStore(ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPStore{
		entries: make(map[string]otpEntry),
		ttl:     ttl,
	}
}

// Put replaces any pending code for the registration ID.
func (s *OTPStore) Put(regID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[regID] = otpEntry{code: code, expiresAt: time.Now().Add(s.ttl)}
}

// Get returns the pending code, or "" if absent or expired.
func (s *OTPStore) Get(regID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[regID]
	if !ok {
		return ""
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, regID)
		return ""
	}
	return entry.code
}

// Delete removes the pending code.
func (s *OTPStore) Delete(regID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, regID)
}
