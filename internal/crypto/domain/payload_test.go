package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPayload() *EncryptedPayload {
	return &EncryptedPayload{
		Version:    PayloadVersion,
		IV:         strings.Repeat("a1", IVSize),
		Salt:       strings.Repeat("b2", SaltSize),
		Ciphertext: "deadbeef",
		AuthTag:    strings.Repeat("c3", TagSize),
		Purpose:    "treatment",
		Timestamp:  time.Now().UTC(),
	}
}

func TestEncryptedPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *EncryptedPayload)
		wantErr string
	}{
		{name: "valid", mutate: func(p *EncryptedPayload) {}},
		{name: "empty ciphertext is allowed", mutate: func(p *EncryptedPayload) { p.Ciphertext = "" }},
		{name: "missing version", mutate: func(p *EncryptedPayload) { p.Version = "" }, wantErr: "version"},
		{name: "short iv", mutate: func(p *EncryptedPayload) { p.IV = "a1a1" }, wantErr: "iv"},
		{name: "short salt", mutate: func(p *EncryptedPayload) { p.Salt = "b2" }, wantErr: "salt"},
		{name: "bad tag", mutate: func(p *EncryptedPayload) { p.AuthTag = "zz" }, wantErr: "authTag"},
		{name: "bad ciphertext", mutate: func(p *EncryptedPayload) { p.Ciphertext = "xyz" }, wantErr: "encryptedData"},
		{name: "missing purpose", mutate: func(p *EncryptedPayload) { p.Purpose = "" }, wantErr: "purpose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
