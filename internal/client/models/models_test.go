package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles_UnmarshalStringOrArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Roles
	}{
		{"single", `"Admin"`, Roles{"Admin"}},
		{"array", `["Aluno","Admin"]`, Roles{"Aluno", "Admin"}},
		{"empty string", `""`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Roles
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)
		})
	}

	var r Roles
	require.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestIdentity_JSONKeepsSingleRoleAsString(t *testing.T) {
	id := Identity{ID: "7", Username: "ana", Roles: Roles{"Professor"}}
	b, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","username":"ana","role":"Professor"}`, string(b))

	var back Identity
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, id, back)
}

func TestIdentity_IsZeroAndHasRole(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{Email: "a@b.c"}.IsZero())

	id := Identity{Roles: Roles{"Aluno", "Admin"}}
	assert.True(t, id.HasRole("Admin"))
	assert.False(t, id.HasRole("Professor"))
}

func TestID_AcceptsNumberAndString(t *testing.T) {
	var p struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"3f2a","c":null}`), &p))
	assert.Equal(t, ID("12"), p.A)
	assert.Equal(t, ID("3f2a"), p.B)
	assert.Equal(t, ID(""), p.C)
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T12:30:00Z"`, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-05-01T12:30:00.123"`, time.Date(2024, 5, 1, 12, 30, 0, 123000000, time.UTC)},
		{`"2024-05-01T12:30:00"`, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{`""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}

	var ts Timestamp
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestPost_DecodesBackendShape(t *testing.T) {
	raw := `{
	  "id": 5,
	  "titulo": "Hello",
	  "conteudo": "First post",
	  "username": "ana",
	  "criadoEm": "2024-05-01T10:00:00",
	  "likes": ["bob", "carol"],
	  "replies": [{"username": "bob", "conteudo": "hi", "criadoEm": "2024-05-01T11:00:00Z"}]
	}`

	var p Post
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, ID("5"), p.ID)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "ana", p.Author)
	assert.True(t, p.LikedBy("bob"))
	assert.False(t, p.LikedBy("ana"))
	assert.False(t, p.LikedBy(""))
	require.Len(t, p.Replies, 1)
	assert.Equal(t, "bob@2024-05-01T11:00:00Z", p.Replies[0].Key())
}

func TestPostInput_UsesBackendFieldNames(t *testing.T) {
	b, err := json.Marshal(PostInput{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Titulo":"t","Conteudo":"b"}`, string(b))
}
