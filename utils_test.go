package rjs2_test

import (
	"errors"
	"testing"

	"github.com/rjavier441/rjs2"
	"github.com/stretchr/testify/assert"
)

func TestTrimSlashes(t *testing.T) {
	tt := []struct {
		In   string
		Want string
	}{
		{In: "", Want: ""},
		{In: "/", Want: ""},
		{In: "//home//", Want: "home"},
		{In: "a/b/", Want: "a/b"},
		{In: "name", Want: "name"},
	}

	for _, tc := range tt {
		assert.Equal(t, tc.Want, rjs2.TrimSlashes(tc.In), "input %q", tc.In)
	}
}

func TestIsEntityName(t *testing.T) {
	for _, name := range []string{"a.txt", "/docs/", "..hidden", ".env"} {
		assert.True(t, rjs2.IsEntityName(name), name)
	}
	for _, name := range []string{"", "/", ".", "./", "..", "/../", "a/b", "../x"} {
		assert.False(t, rjs2.IsEntityName(name), name)
	}
}

func TestJoinMountPath(t *testing.T) {
	tt := []struct {
		Name  string
		Parts []string
		Want  string
	}{
		{Name: "root", Parts: []string{"/"}, Want: "/"},
		{Name: "nothing", Parts: nil, Want: "/"},
		{Name: "root child", Parts: []string{"/", "app1"}, Want: "/app1"},
		{Name: "nested", Parts: []string{"/home/", "/index.html"}, Want: "/home/index.html"},
		{Name: "doubled slashes", Parts: []string{"//a//", "b//c/"}, Want: "/a/b/c"},
		{Name: "empty alias mounts at parent", Parts: []string{"/home", ""}, Want: "/home"},
		{Name: "dots kept literally", Parts: []string{"/a", "."}, Want: "/a/."},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, rjs2.JoinMountPath(tc.Parts...))
		})
	}
}

func TestJoinSourcePath(t *testing.T) {
	assert.Equal(t, "/app2/index.html", rjs2.JoinSourcePath("/app2/", "index.html"))
	assert.Equal(t, "/index.html", rjs2.JoinSourcePath("/", "index.html"))
	assert.Equal(t, "/api1/app.hcl", rjs2.JoinSourcePath("/", "api1/app.hcl"))
}

func TestHasDotSegment(t *testing.T) {
	assert.False(t, rjs2.HasDotSegment("/a/b.html"))
	assert.True(t, rjs2.HasDotSegment("/a/.env"))
	assert.True(t, rjs2.HasDotSegment("/.git/config"))
	assert.False(t, rjs2.HasDotSegment("/"))
}

func TestMountError(t *testing.T) {
	cause := errors.New("boom")
	err := &rjs2.MountError{Op: "traverse", MountPath: "/home", SourcePath: "/app2", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "traverse /app2 (mount /home): boom", err.Error())

	var target *rjs2.MountError
	assert.ErrorAs(t, errors.Join(errors.New("ctx"), err), &target)
	assert.Equal(t, "/home", target.MountPath)
}
