package validate

import "testing"

func TestIsInternalIP(t *testing.T) {
	internal := []string{
		"127.0.0.1",
		"127.255.255.254",
		"10.0.0.1",
		"10.255.0.17",
		"172.16.0.1",
		"172.31.255.254",
		"192.168.1.5",
		"192.168.0.1",
		"169.254.1.1",
		"::1",
		"[::1]",
		"fe80::1",
		"fc00::1",
		"fd12:3456::1",
		"::ffff:127.0.0.1",
		"::ffff:192.168.1.5",
		"localhost",
		"LOCALHOST",
		"  localhost  ",
		"localhost.localdomain",
		"ip6-loopback",
	}
	for _, host := range internal {
		if !IsInternalIP(host) {
			t.Errorf("IsInternalIP(%q) = false, want true", host)
		}
	}

	external := []string{
		"8.8.8.8",
		"1.1.1.1",
		"172.15.0.1",  // just below the RFC1918 172 range
		"172.32.0.1",  // just above it
		"192.169.0.1", // outside 192.168/16
		"11.0.0.1",
		"2001:4860:4860::8888",
		"::ffff:8.8.8.8",
		"cdn.quillcms.com",
		"example.com",
		"",
		"not an ip",
	}
	for _, host := range external {
		if IsInternalIP(host) {
			t.Errorf("IsInternalIP(%q) = true, want false", host)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		allowed []string
		valid   bool
	}{
		{"allowed domain", "https://cdn.quillcms.com/img/a.png", nil, true},
		{"allowed subdomain", "https://eu.cdn.quillcms.com/img/a.png", nil, true},
		{"http scheme", "http://cdn.quillcms.com/a", nil, true},
		{"custom allow-list", "https://static.example.org/a", []string{"example.org"}, true},
		{"whitespace tolerated", "  https://cdn.quillcms.com/a  ", nil, true},

		{"malformed", "https://cdn.quillcms.com/%zz\x7f", nil, false},
		{"ftp scheme", "ftp://cdn.quillcms.com/a", nil, false},
		{"file scheme", "file:///etc/passwd", nil, false},
		{"javascript scheme", "javascript:alert(1)", nil, false},
		{"no host", "https:///path-only", nil, false},
		{"loopback", "https://127.0.0.1/admin", nil, false},
		{"private v4", "http://10.0.0.5/latest/meta-data", nil, false},
		{"link local", "http://169.254.169.254/latest/meta-data", nil, false},
		{"v6 loopback", "http://[::1]:8080/", nil, false},
		{"v6 unique local", "http://[fd00::1]/", nil, false},
		{"localhost name", "http://localhost:3000/", nil, false},
		{"not in allow-list", "https://evil.example.com/a", nil, false},
		{"suffix but not subdomain", "https://notcdn.quillcms.com.evil.io/a", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := URL(tt.raw, tt.allowed)
			if res.Valid != tt.valid {
				t.Errorf("URL(%q) valid = %v (%s), want %v", tt.raw, res.Valid, res.Reason, tt.valid)
			}
			if !res.Valid && res.Reason == "" {
				t.Error("invalid result should carry a reason")
			}
		})
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"plain image", "https://cdn.quillcms.com/photos/cat.jpg", true},
		{"no extension", "https://cdn.quillcms.com/photos/cat", true},
		{"php", "https://cdn.quillcms.com/shell.php", false},
		{"exe", "https://cdn.quillcms.com/update.exe", false},
		{"sh", "https://cdn.quillcms.com/run.sh", false},
		{"jsp uppercase", "https://cdn.quillcms.com/a.JSP", false},
		{"still checks host", "https://127.0.0.1/cat.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ImageURL(tt.raw, nil)
			if res.Valid != tt.valid {
				t.Errorf("ImageURL(%q) valid = %v (%s), want %v", tt.raw, res.Valid, res.Reason, tt.valid)
			}
		})
	}
}
