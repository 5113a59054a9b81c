package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
)

func writePrivateKey(t *testing.T, path string) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	data := pem.EncodeToMemory(block)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return data
}

func TestSSHKey_CopyAndDelete(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "id_ed25519")
	dst := filepath.Join(dir, "virtcim_mig")
	data := writePrivateKey(t, src)

	svc := NewSSHKeyService(dst)
	ctx := context.Background()

	// 目标已存在时被替换
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))
	require.NoError(t, svc.CopySSHKey(ctx, &entity.CopySSHKeyRequest{Source: src}))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	fi, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, svc.DeleteSSHKey(ctx))
	assert.NoFileExists(t, dst)

	err = svc.DeleteSSHKey(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
	assert.Contains(t, err.Error(), "Can not find file")
}

func TestSSHKey_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	disabled := NewSSHKeyService("")
	assert.ErrorIs(t, disabled.CopySSHKey(ctx, &entity.CopySSHKeyRequest{Source: "/x"}), apierror.ErrNotSupported)
	assert.ErrorIs(t, disabled.DeleteSSHKey(ctx), apierror.ErrNotSupported)

	svc := NewSSHKeyService(filepath.Join(dir, "dst"))
	err := svc.CopySSHKey(ctx, &entity.CopySSHKeyRequest{Source: filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, apierror.ErrInvalidParameter)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("not a key"), 0o600))
	err = svc.CopySSHKey(ctx, &entity.CopySSHKeyRequest{Source: bad})
	assert.ErrorIs(t, err, apierror.ErrInvalidParameter)
	assert.NoFileExists(t, filepath.Join(dir, "dst"))
}
