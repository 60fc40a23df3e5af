package apps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjavier441/rjs2/apps"
)

func TestParseDescriptor_HCL(t *testing.T) {
	src := `
kind      = "webdav"
root      = "shared"
read_only = true
realm     = "files"
quota     = 10
label     = "team share"

user "alice" {
  bcrypt = "$2a$10$abc"
}

user "bob" {
  bcrypt = "$2a$10$def"
}
`
	d, err := apps.ParseDescriptor("/files/dav.hcl", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "webdav", d.Kind)
	assert.Equal(t, "shared", d.Root)
	assert.True(t, d.ReadOnly)
	assert.Equal(t, "files", d.Realm)
	require.Len(t, d.Users, 2)
	assert.Equal(t, apps.User{Name: "alice", Bcrypt: "$2a$10$abc"}, d.Users[0])
	assert.Equal(t, "bob", d.Users[1].Name)
	assert.Equal(t, map[string]string{"quota": "10", "label": "team share"}, d.Options)
}

func TestParseDescriptor_YAML(t *testing.T) {
	src := `
kind: proxy
target: http://localhost:9000
users:
  - name: alice
    bcrypt: $2a$10$abc
options:
  timeout: 5s
`
	for _, name := range []string{"api.yaml", "api.yml"} {
		t.Run(name, func(t *testing.T) {
			d, err := apps.ParseDescriptor(name, []byte(src))
			require.NoError(t, err)

			assert.Equal(t, "proxy", d.Kind)
			assert.Equal(t, "http://localhost:9000", d.Target)
			assert.Equal(t, []apps.User{{Name: "alice", Bcrypt: "$2a$10$abc"}}, d.Users)
			assert.Equal(t, "5s", d.Options["timeout"])
		})
	}
}

func TestParseDescriptor_JSON(t *testing.T) {
	d, err := apps.ParseDescriptor("app.json", []byte(`{"kind":"webdav","root":".","read_only":true}`))
	require.NoError(t, err)

	assert.Equal(t, "webdav", d.Kind)
	assert.Equal(t, ".", d.Root)
	assert.True(t, d.ReadOnly)
}

func TestParseDescriptor_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{name: "hcl syntax", file: "a.hcl", content: `kind = `, errMsg: "failed to parse HCL descriptor"},
		{name: "hcl missing kind", file: "a.hcl", content: `root = "x"`, errMsg: "failed to decode HCL descriptor"},
		{name: "hcl unknown block", file: "a.hcl", content: "kind = \"webdav\"\nextra {\n}\n", errMsg: "a.hcl"},
		{name: "yaml missing kind", file: "a.yaml", content: `root: x`, errMsg: "invalid descriptor"},
		{name: "json syntax", file: "a.json", content: `{`, errMsg: "failed to decode JSON descriptor"},
		{name: "user without hash", file: "a.json", content: `{"kind":"webdav","users":[{"name":"a"}]}`, errMsg: "invalid descriptor"},
		{name: "unknown format", file: "a.js", content: `module.exports = {}`, errMsg: "unknown descriptor format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := apps.ParseDescriptor(tt.file, []byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsDescriptor(t *testing.T) {
	assert.True(t, apps.IsDescriptor("a/b.hcl"))
	assert.True(t, apps.IsDescriptor("a/b.YAML"))
	assert.True(t, apps.IsDescriptor("b.yml"))
	assert.True(t, apps.IsDescriptor("b.json"))
	assert.False(t, apps.IsDescriptor("api1/app.js"))
	assert.False(t, apps.IsDescriptor("dir"))
}
