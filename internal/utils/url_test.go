package utils

import (
	"errors"
	"testing"
)

func TestNormalizeTargetURL(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{" HTTPS://Jobs.Example.COM:443/p/42?ref=x#apply ", "https://jobs.example.com/p/42?ref=x"},
		{"http://example.com:80/", "http://example.com/"},
		{"http://example.com:8080/jobs/", "http://example.com:8080/jobs/"},
		{"http://bücher.example/jobs", "http://xn--bcher-kva.example/jobs"},
		{"http://[::1]:3001/jobs", "http://[::1]:3001/jobs"},
		{"https://example.com/Careers/Engineer?id=ABC", "https://example.com/Careers/Engineer?id=ABC"},
	}

	for _, tc := range cases {
		got, err := NormalizeTargetURL(tc.in)
		if err != nil {
			t.Errorf("NormalizeTargetURL(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeTargetURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTargetURL_Rejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyURL},
		{"   ", ErrEmptyURL},
		{"ftp://example.com/job", ErrUnsupportedScheme},
		{"not a url", ErrUnsupportedScheme},
		{"https:///path-only", ErrMissingHost},
	}

	for _, tc := range cases {
		_, err := NormalizeTargetURL(tc.in)
		if !errors.Is(err, tc.want) {
			t.Errorf("NormalizeTargetURL(%q) error = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestHostname(t *testing.T) {
	t.Parallel()
	if got := Hostname("https://Boards.Example.com/jobs/1"); got != "boards.example.com" {
		t.Errorf("unexpected hostname %q", got)
	}
	if got := Hostname("://bad"); got != "" {
		t.Errorf("expected empty hostname for bad url, got %q", got)
	}
}
