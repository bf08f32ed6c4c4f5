package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnv_Lookup(t *testing.T) {
	t.Setenv("NEWSFEED_TEST_KEY", "abc123")
	t.Setenv("NEWSFEED_EMPTY_KEY", "")

	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{name: "set", key: "NEWSFEED_TEST_KEY", want: "abc123", wantOK: true},
		{name: "empty counts as missing", key: "NEWSFEED_EMPTY_KEY", want: "", wantOK: false},
		{name: "unset", key: "NEWSFEED_DEFINITELY_UNSET_KEY", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Env{}.Lookup(tt.key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStatic_Lookup(t *testing.T) {
	creds := Static{NewsAPIKey: "key", "EMPTY": ""}

	if got, ok := creds.Lookup(NewsAPIKey); !ok || got != "key" {
		t.Errorf("Lookup(%q) = (%q, %v), want (\"key\", true)", NewsAPIKey, got, ok)
	}
	if _, ok := creds.Lookup("EMPTY"); ok {
		t.Error("Lookup(\"EMPTY\") should report missing")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("NEWSFEED_DOTENV_KEY=from-file\n"), 0o644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	t.Setenv("NEWSFEED_DOTENV_KEY", "")
	os.Unsetenv("NEWSFEED_DOTENV_KEY")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got, ok := (Env{}).Lookup("NEWSFEED_DOTENV_KEY"); !ok || got != "from-file" {
		t.Errorf("Lookup() after LoadDotEnv = (%q, %v), want (\"from-file\", true)", got, ok)
	}
}

func TestRenamed_Lookup(t *testing.T) {
	source := Static{"MY_NEWSAPI_KEY": "renamed", "OTHER": "other"}
	r := Renamed{Source: source, Names: map[string]string{NewsAPIKey: "MY_NEWSAPI_KEY"}}

	if got, ok := r.Lookup(NewsAPIKey); !ok || got != "renamed" {
		t.Errorf("Lookup(%q) = (%q, %v), want (\"renamed\", true)", NewsAPIKey, got, ok)
	}
	if got, ok := r.Lookup("OTHER"); !ok || got != "other" {
		t.Errorf("Lookup(OTHER) = (%q, %v), want (\"other\", true)", got, ok)
	}
	if _, ok := r.Lookup("MISSING"); ok {
		t.Error("Lookup(MISSING) should not be found")
	}
}
