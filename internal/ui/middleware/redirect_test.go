package middleware

import "testing"

func TestSafeLocalPath(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"корень", "/", "/", true},
		{"путь с query", "/production?status=idle", "/production?status=idle", true},
		{"пустая строка", "", "", false},
		{"относительный путь", "production", "", false},
		{"абсолютный URL", "https://evil.example/", "", false},
		{"protocol-relative", "//evil.example/path", "", false},
		{"обратный слэш", "/\\evil.example", "", false},
		{"перевод строки", "/users\r\nSet-Cookie: x=1", "", false},
		{"javascript", "javascript:alert(1)", "", false},
		{"закодированный обратный слэш", "/%5Cevil.example", "", false},
		{"закодированный обратный слэш в нижнем регистре", "/%5cevil.example", "", false},
		{"закодированные слэши", "/%2F%2Fevil.example", "", false},
		{"закодированный слэш после корня", "/%2Fevil.example", "", false},
		{"закодированный перевод строки", "/users%0D%0ASet-Cookie:%20x=1", "", false},
		{"кодированный пробел сохраняется", "/quality?q=RM%20001", "/quality?q=RM%20001", true},
		{"кириллица в пути", "/%D0%BF%D1%83%D1%82%D1%8C", "/%D0%BF%D1%83%D1%82%D1%8C", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeLocalPath(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("SafeLocalPath(%q) = (%q, %v), ожидалось (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSafeReferer(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
		wantOK  bool
	}{
		{"тот же хост", "http://mill.local/inventory?category=finished_good", "/inventory?category=finished_good", true},
		{"только путь", "/quality", "/quality", true},
		{"другой хост", "http://evil.example/inventory", "", false},
		{"закодированный обратный слэш", "http://mill.local/%5Cevil.example", "", false},
		{"пустой", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeReferer(tt.referer, "mill.local")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("SafeReferer(%q) = (%q, %v), ожидалось (%q, %v)", tt.referer, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
