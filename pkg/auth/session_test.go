package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testSecret, "mathquiz-api", "mq_session", time.Hour, false)
	require.NoError(t, err)
	return m
}

func testUser() *entity.User {
	return &entity.User{ID: 7, Username: "ali", FirstName: "Ali", LastName: "Yilmaz", Grade: 3}
}

func TestNewSessionManager_ShortSecret(t *testing.T) {
	_, err := NewSessionManager("short", "mathquiz-api", "", time.Hour, false)
	assert.Error(t, err, "Короткий секрет должен отклоняться")
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	// Arrange
	m := newTestManager(t)

	// Act
	token, issued, err := m.Issue(testUser())
	require.NoError(t, err)
	claims, err := m.Parse(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ali", claims.Username)
	assert.Equal(t, "Ali", claims.FirstName)
	assert.Equal(t, 3, claims.Grade)
	assert.NotEmpty(t, claims.ID, "У токена должен быть jti")
	assert.Equal(t, issued.ID, claims.ID)
}

func TestSessionManager_Parse_Expired(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)

	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
}

func TestSessionManager_Parse_Invalid(t *testing.T) {
	m := newTestManager(t)
	other, err := NewSessionManager(strings.Repeat("x", 32), "mathquiz-api", "mq_session", time.Hour, false)
	require.NoError(t, err)
	foreign, _, err := other.Issue(testUser())
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{"пустой токен", ""},
		{"мусор", "not-a-token"},
		{"чужая подпись", foreign},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Parse(tc.token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func TestSessionManager_Cookies(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	m.SetCookie(rec, "token-value")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mq_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly, "Cookie должна быть HttpOnly")
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, "token-value", m.TokenFromRequest(req))

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0, "Очищенная cookie должна истекать")
}

func TestSessionManager_RemainingTTL(t *testing.T) {
	m := newTestManager(t)
	_, claims, err := m.Issue(testUser())
	require.NoError(t, err)

	left := m.RemainingTTL(claims)
	assert.True(t, left > 59*time.Minute && left <= time.Hour)
}
