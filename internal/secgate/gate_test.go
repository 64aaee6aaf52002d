package secgate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateHandler() http.Handler {
	return NewGate(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestOversizedBodyRejected(t *testing.T) {
	handler := newGateHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/shayaris", strings.NewReader(""))
	req.ContentLength = 11_000_000
	req.Header.Set("Content-Type", "application/json")

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
	assert.JSONEq(t, `{"error":"Request too large","max_size":"10MB"}`, res.Body.String())
}

func TestContentTypeEnforcedOnWrites(t *testing.T) {
	handler := newGateHandler()

	tests := []struct {
		name        string
		method      string
		contentType string
		wantCode    int
	}{
		{"json post", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", http.StatusOK},
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{"xml rejected", http.MethodPost, "application/xml", http.StatusUnsupportedMediaType},
		{"missing rejected", http.MethodPatch, "", http.StatusUnsupportedMediaType},
		{"get unaffected", http.MethodGet, "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/shayaris", nil)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)
			assert.Equal(t, tc.wantCode, res.Code)
			if tc.wantCode == http.StatusUnsupportedMediaType {
				assert.JSONEq(t, `{"error":"Unsupported media type"}`, res.Body.String())
			}
		})
	}
}

func TestSuspiciousURLRejected(t *testing.T) {
	handler := newGateHandler()

	suspicious := []string{
		"/api/search?q=%3Cscript%3Ealert(1)%3C/script%3E",
		"/api/search?q=javascript:alert(1)",
		"/api/search?q=onload%3Dalert(1)",
		"/api/search?q=eval(1)",
		"/api/search?q=document.cookie",
		"/api/search?q=window.location",
	}
	for _, target := range suspicious {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusBadRequest, res.Code, "url %s should be rejected", target)
		assert.JSONEq(t, `{"error":"Invalid request"}`, res.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=mohabbat", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pass", true},
		{"short1!", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoPunct123", false},
		{"Password123", false}, // no punctuation
	}
	for _, tc := range tests {
		ok, reason := ValidatePasswordStrength(tc.password)
		assert.Equal(t, tc.ok, ok, "password %q: %s", tc.password, reason)
	}

	ok, reason := ValidatePasswordStrength("password")
	require.False(t, ok)
	assert.Contains(t, reason, "8 characters")
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b>  "))
	assert.Equal(t, "alert(1)", SanitizeText("javascript:alert(1)"))
	assert.Equal(t, `"x"`, SanitizeText(`onclick="x"`))
	assert.Equal(t, "", SanitizeText(""))

	long := strings.Repeat("a", 12000)
	assert.Len(t, SanitizeText(long), maxTextLength)
}

func TestSanitizeTextTruncatesByRunesNotBytes(t *testing.T) {
	// 12,000 characters of Devanagari, three bytes each.
	long := strings.Repeat("श", 12000)
	out := SanitizeText(long)
	assert.Equal(t, maxTextLength, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))

	// Under the character cap, even though the byte count exceeds it.
	short := strings.Repeat("श", 4000)
	assert.Equal(t, short, SanitizeText(short))
}

func TestPasswordLengthCountsCharacters(t *testing.T) {
	// Five characters, fifteen bytes; must still fail the length gate.
	ok, reason := ValidatePasswordStrength("शायरी")
	require.False(t, ok)
	assert.Contains(t, reason, "8 characters")

	ok, _ = ValidatePasswordStrength("शायरXy1!")
	assert.True(t, ok)
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		ok       bool
	}{
		{"mirza_ghalib", true},
		{"ab", false},
		{strings.Repeat("x", 31), false},
		{"has space", false},
		{"_leading", false},
		{"trailing_", false},
		{"admin", false},
		{"Admin", false},
	}
	for _, tc := range tests {
		ok, _ := ValidateUsername(tc.username)
		assert.Equal(t, tc.ok, ok, "username %q", tc.username)
	}
}
