package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("ReadFile(VERSION) error = %v", err)
	}

	want := strings.TrimSpace(string(buf))
	if got := strings.TrimSpace(Version); got != want {
		t.Errorf("Version = %q, want %q", got, want)
	}

	if got := SemVer().String(); got != want {
		t.Errorf("SemVer() = %q, want %q", got, want)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestUserDir(t *testing.T) {
	tests := []struct {
		name string
		base func() (string, error)
		want func(t *testing.T) string
	}{
		{
			name: "base directory",
			base: func() (string, error) { return "/etc/xdg", nil },
			want: func(*testing.T) string { return filepath.Join("/etc/xdg", Prefix()) },
		},
		{
			name: "home fallback",
			base: func() (string, error) { return "", errors.New("unset") },
			want: func(t *testing.T) string {
				home, err := os.UserHomeDir()
				if err != nil {
					t.Skip("no home directory")
				}

				return filepath.Join(home, ".hidden", Prefix())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want(t)
			if got := userDir(tt.base, ".hidden"); got != want {
				t.Errorf("userDir() = %q, want %q", got, want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("config.yaml")

	if filepath.Dir(got) != ConfigDir() || filepath.Base(got) != "config.yaml" {
		t.Errorf("ConfigPath() = %q, want config.yaml in %q", got, ConfigDir())
	}

	if filepath.Base(CachePath()) != Prefix() {
		t.Errorf("CachePath() = %q, want base %q", CachePath(), Prefix())
	}
}
