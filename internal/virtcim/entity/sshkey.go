package entity

// CopySSHKeyRequest 将私钥复制到配置的临时密钥路径
type CopySSHKeyRequest struct {
	Source string `json:"source"`
}

func (r *CopySSHKeyRequest) IsValid() error {
	return requireFields(field{"source", r.Source})
}
