package services

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"dermacare/internal/models"
)

// Фейковые хранилища повторяют CAS-семантику SQL-репозиториев:
// карта под мьютексом, consume только если строка ещё не закрыта.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[int]*models.User

	// failMarkVerified — если задана, MarkVerified возвращает её,
	// ничего не меняя (имитация упавшего UPDATE).
	failMarkVerified error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.VerifiedAt != nil {
		t := *u.VerifiedAt
		cp.VerifiedAt = &t
	}
	if u.RefreshToken != nil {
		s := *u.RefreshToken
		cp.RefreshToken = &s
	}
	return &cp
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = r.seq
	user.IsActive = true
	user.CreatedAt = time.Now()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByIdentifier(identifier string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.UserName, identifier) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByUserNameOrEmail(userName, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.UserName, userName) || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(userID int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkVerified != nil {
		return r.failMarkVerified
	}
	if u, ok := r.users[userID]; ok && u.VerifiedAt == nil {
		t := at
		u.VerifiedAt = &t
	}
	return nil
}

func (r *fakeUserRepo) UpdateRefresh(userID int, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		s := token
		u.RefreshToken = &s
	}
	return nil
}

func (r *fakeUserRepo) RotateRefresh(oldToken, newToken string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			s := newToken
			u.RefreshToken = &s
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearRefresh(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = nil
	}
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// deactivate — админское отключение, в проде делается вне этого ядра.
func (r *fakeUserRepo) deactivate(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsActive = false
		u.RefreshToken = nil
	}
}

type fakeVerifRepo struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.VerificationOtp

	// Хуки гонок: вызываются до захвата мьютекса, чтобы тест мог
	// успеть закрыть строку "параллельным" победителем.
	beforeIncrement func(id int64)
	beforeConsume   func(id int64)
}

func newFakeVerifRepo() *fakeVerifRepo {
	return &fakeVerifRepo{rows: make(map[int64]*models.VerificationOtp)}
}

func cloneVerif(v *models.VerificationOtp) *models.VerificationOtp {
	cp := *v
	if v.ConsumedAt != nil {
		t := *v.ConsumedAt
		cp.ConsumedAt = &t
	}
	return &cp
}

func (r *fakeVerifRepo) Create(v *models.VerificationOtp) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	v.ID = r.seq
	r.rows[v.ID] = cloneVerif(v)
	return v.ID, nil
}

func (r *fakeVerifRepo) GetActive(userID int, purpose string, now time.Time) (*models.VerificationOtp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.VerificationOtp
	for _, v := range r.rows {
		if v.UserID != userID || v.Purpose != purpose || v.ConsumedAt != nil || !v.ExpiresAt.After(now) {
			continue
		}
		if latest == nil || v.SentAt.After(latest.SentAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneVerif(latest), nil
}

func (r *fakeVerifRepo) IncrementAttempts(id int64) (int, error) {
	if r.beforeIncrement != nil {
		r.beforeIncrement(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || v.ConsumedAt != nil {
		return 0, sql.ErrNoRows
	}
	v.Attempts++
	return v.Attempts, nil
}

func (r *fakeVerifRepo) Consume(id int64, at time.Time) (bool, error) {
	if r.beforeConsume != nil {
		r.beforeConsume(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || v.ConsumedAt != nil {
		return false, nil
	}
	t := at
	v.ConsumedAt = &t
	return true, nil
}

func (r *fakeVerifRepo) ConsumeOpen(userID int, purpose string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.rows {
		if v.UserID == userID && v.Purpose == purpose && v.ConsumedAt == nil {
			t := at
			v.ConsumedAt = &t
		}
	}
	return nil
}

// closeRow — закрывает строку напрямую, в обход Consume (без хуков).
func (r *fakeVerifRepo) closeRow(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.rows[id]; ok && v.ConsumedAt == nil {
		t := time.Now()
		v.ConsumedAt = &t
	}
}

// openCount — сколько строк пары не закрыто; инвариант требует <= 1.
func (r *fakeVerifRepo) openCount(userID int, purpose string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.rows {
		if v.UserID == userID && v.Purpose == purpose && v.ConsumedAt == nil {
			n++
		}
	}
	return n
}

func (r *fakeVerifRepo) byID(id int64) *models.VerificationOtp {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.rows[id]; ok {
		return cloneVerif(v)
	}
	return nil
}

// fakeEmails — запоминает последний отправленный код.
type fakeEmails struct {
	mu       sync.Mutex
	lastCode string
	lastTo   string
	welcomes int
}

func (f *fakeEmails) SendOtpEmail(email, code string, ttlMinutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTo = email
	f.lastCode = code
	return nil
}

func (f *fakeEmails) SendWelcomeEmail(email, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes++
	return nil
}

func (f *fakeEmails) last() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTo, f.lastCode
}
