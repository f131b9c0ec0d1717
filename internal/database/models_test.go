package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialLinks_Value(t *testing.T) {
	links := SocialLinks{Instagram: "@roomie", LinkedIn: "in/roomie"}

	value, err := links.Value()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(value.(string)), &decoded))
	assert.Equal(t, map[string]string{"instagram": "@roomie", "linkedin": "in/roomie"}, decoded)
}

func TestSocialLinks_Scan(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected SocialLinks
		hasError bool
	}{
		{"Nil value", nil, SocialLinks{}, false},
		{"Byte slice JSON", []byte(`{"instagram":"@a","linkedin":"in/a"}`), SocialLinks{Instagram: "@a", LinkedIn: "in/a"}, false},
		{"String JSON", `{"instagram":"@b"}`, SocialLinks{Instagram: "@b"}, false},
		{"Empty object", []byte(`{}`), SocialLinks{}, false},
		{"Invalid JSON", []byte(`{invalid`), SocialLinks{}, true},
		{"Unsupported type", 42, SocialLinks{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := SocialLinks{Instagram: "stale"}
			err := links.Scan(tt.value)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, links)
		})
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	data, err := json.Marshal(User{ID: "u1", Email: "a@b.c", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}
