// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsAbsolutePassThrough(t *testing.T) {
	got, err := Abs("/abs/path/x.xml", "/base")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path/x.xml", got)
}

func TestAbsDotRelativeUsesCwd(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := Abs("./x.xml", "/base")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "x.xml"), got)

	got, err = Abs("../x.xml", "/base")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(cwd), "x.xml"), got)
}

func TestAbsBareRelativeUsesBase(t *testing.T) {
	got, err := Abs("rel/x.xml", "/base")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/base", "rel/x.xml"), got)
}

func TestAbsBareRelativeNoBase(t *testing.T) {
	_, err := Abs("rel/x.xml", "")
	assert.ErrorIs(t, err, ErrNoBaseDir)
}

func TestMkdirIfAbsent(t *testing.T) {
	fs := afero.NewMemMapFs()
	defer gostub.Stub(&FS, fs).Reset()

	require.NoError(t, MkdirIfAbsent("/a/b/c"))

	ok, err := afero.DirExists(fs, "/a/b/c")
	require.NoError(t, err)
	assert.True(t, ok)

	// already existing is not an error
	require.NoError(t, MkdirIfAbsent("/a/b/c"))
}

func TestAllExist(t *testing.T) {
	fs := afero.NewMemMapFs()
	defer gostub.Stub(&FS, fs).Reset()

	require.NoError(t, afero.WriteFile(fs, "/one.csv", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/two.csv", []byte("y"), 0o644))

	assert.True(t, AllExist([]string{"/one.csv", "/two.csv"}))
	assert.False(t, AllExist([]string{"/one.csv", "/missing.csv"}))
	assert.True(t, AllExist(nil))
}
