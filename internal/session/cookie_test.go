package session

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arjun8815/spinwise-erp/internal/domain/model"
)

func TestCookieCodec_EncryptDecrypt(t *testing.T) {
	codec, err := NewCookieCodec("test-secret", false)
	if err != nil {
		t.Fatalf("NewCookieCodec: %v", err)
	}

	ident := &model.Identity{
		UserID: "u1", Email: "admin@spinwise.local",
		AccessToken: "at", RefreshToken: "rt",
		ExpiresAt: time.Unix(1_900_000_000, 0),
	}
	enc, err := codec.Encrypt(NewCookieData("sid-1", ident))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	data, err := codec.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if data.SID != "sid-1" {
		t.Errorf("SID = %q", data.SID)
	}
	got := data.Identity()
	if got.UserID != ident.UserID || got.RefreshToken != "rt" || !got.ExpiresAt.Equal(ident.ExpiresAt) {
		t.Errorf("Identity() = %+v, ожидался %+v", got, ident)
	}
}

func TestCookieCodec_Base64Key(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	a, err := NewCookieCodec(key, false)
	if err != nil {
		t.Fatalf("NewCookieCodec: %v", err)
	}
	b, _ := NewCookieCodec(key, false)

	enc, _ := a.Encrypt(&CookieData{SID: "s"})
	if _, err := b.Decrypt(enc); err != nil {
		t.Errorf("кодеки с одним ключом несовместимы: %v", err)
	}
}

func TestCookieCodec_DecryptErrors(t *testing.T) {
	codec, _ := NewCookieCodec("key-a", false)
	other, _ := NewCookieCodec("key-b", false)
	foreign, _ := other.Encrypt(&CookieData{SID: "s"})
	noSID, _ := codec.Encrypt(&CookieData{UserID: "u1"})

	tests := []struct {
		name  string
		value string
	}{
		{"не base64", "%%%"},
		{"слишком коротко", base64.URLEncoding.EncodeToString([]byte("abc"))},
		{"чужой ключ", foreign},
		{"без SID", noSID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Decrypt(tt.value); err == nil {
				t.Error("ожидалась ошибка")
			}
		})
	}
}

func TestCookieCodec_WriteReadClear(t *testing.T) {
	codec, _ := NewCookieCodec("", true)

	rec := httptest.NewRecorder()
	if err := codec.Write(rec, &CookieData{SID: "sid-1", UserID: "u1"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("атрибуты cookie: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	data, err := codec.Read(req)
	if err != nil || data == nil || data.SID != "sid-1" {
		t.Fatalf("Read() = %+v, %v", data, err)
	}

	empty, err := codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	if empty != nil || err != nil {
		t.Errorf("Read() без cookie = %+v, %v", empty, err)
	}

	rec = httptest.NewRecorder()
	codec.Clear(rec)
	if got := rec.Result().Cookies(); len(got) != 1 || got[0].MaxAge != -1 {
		t.Errorf("Clear() cookies = %v", got)
	}
}
