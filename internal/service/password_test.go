package service

import (
	"testing"

	"socialhub/internal/model"
)

func TestValidatePassword(t *testing.T) {
	user := &model.User{Username: "alice", Email: "alice.smith@example.com", FirstName: "Alice", LastName: "Smith"}

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "strong password",
			password: "correct-horse-battery",
		},
		{
			name:     "too short",
			password: "x7#kQ",
			want:     []string{"This password is too short. It must contain at least 8 characters."},
		},
		{
			name:     "common",
			password: "Password123",
			want:     []string{"This password is too common."},
		},
		{
			name:     "numeric and common",
			password: "12345678",
			want:     []string{"This password is too common.", "This password is entirely numeric."},
		},
		{
			name:     "numeric only",
			password: "90817263544",
			want:     []string{"This password is entirely numeric."},
		},
		{
			name:     "similar to email part",
			password: "examplecom",
			want:     []string{"The password is too similar to the email address."},
		},
		{
			name:     "similar to username",
			password: "alice1234",
			want:     []string{"The password is too similar to the username."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password, user)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("problem[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQuickRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "xyz", 0},
		{"aab", "abb", 2.0 * 2 / 6},
	}
	for _, tt := range tests {
		if got := quickRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("quickRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
