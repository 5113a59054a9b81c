package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
)

// SSHKeyService 管理迁移使用的临时 SSH 私钥
type SSHKeyService struct {
	// tmpKey 临时私钥路径，为空表示未启用
	tmpKey string
}

// NewSSHKeyService 创建 SSH 密钥服务
func NewSSHKeyService(tmpKey string) *SSHKeyService {
	return &SSHKeyService{tmpKey: tmpKey}
}

// CopySSHKey 将私钥复制到临时密钥路径，已有的密钥会被替换
func (s *SSHKeyService) CopySSHKey(ctx context.Context, req *entity.CopySSHKeyRequest) error {
	logger := zerolog.Ctx(ctx)

	if s.tmpKey == "" {
		return errSSHKeyDisabled()
	}

	data, err := os.ReadFile(req.Source)
	if err != nil {
		return apierror.WrapError(apierror.ErrInvalidParameter,
			fmt.Sprintf("Got error in copying ssh key from [%s] to [%s].", req.Source, s.tmpKey), err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return apierror.WrapError(apierror.ErrInvalidParameter,
			fmt.Sprintf("Invalid ssh private key [%s].", req.Source), err)
	}

	if err := os.Remove(s.tmpKey); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apierror.WrapError(apierror.ErrInternalError,
			fmt.Sprintf("Got error in copying ssh key from [%s] to [%s].", req.Source, s.tmpKey), err)
	}
	if err := os.WriteFile(s.tmpKey, data, 0o600); err != nil {
		return apierror.WrapError(apierror.ErrInternalError,
			fmt.Sprintf("Got error in copying ssh key from [%s] to [%s].", req.Source, s.tmpKey), err)
	}

	logger.Info().
		Str("source", req.Source).
		Str("dest", s.tmpKey).
		Str("fingerprint", ssh.FingerprintSHA256(signer.PublicKey())).
		Msg("SSH key copied")
	return nil
}

// DeleteSSHKey 删除临时密钥
func (s *SSHKeyService) DeleteSSHKey(ctx context.Context) error {
	if s.tmpKey == "" {
		return errSSHKeyDisabled()
	}

	if _, err := os.Stat(s.tmpKey); err != nil {
		return apierror.WrapError(apierror.ErrNotFound,
			fmt.Sprintf("Can not find file [%s] before delete.", s.tmpKey), err)
	}
	if err := os.Remove(s.tmpKey); err != nil {
		return apierror.WrapError(apierror.ErrInternalError,
			fmt.Sprintf("Failed to delete [%s].", s.tmpKey), err)
	}

	zerolog.Ctx(ctx).Info().Str("path", s.tmpKey).Msg("SSH key deleted")
	return nil
}
