package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperOpener opens a KMS keeper for a URI.
type KeeperOpener func(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct {
	open KeeperOpener
}

// NewKMSService creates a KMS service backed by gocloud.dev/secrets.
// Supported URIs: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewKMSService() KMSService {
	return &kmsService{open: openKeeper}
}

func openKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// UnwrapKey decrypts the wrapped master key and checks its size.
func (k *kmsService) UnwrapKey(ctx context.Context, keyURI, wrappedKey string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("wrapped key is not valid base64: %w", err)
	}

	keeper, err := k.open(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master key: %w", err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidMasterKey
	}
	return key, nil
}

// WrapKey encrypts key material for storage in ENCRYPTION_KEY.
func (k *kmsService) WrapKey(ctx context.Context, keyURI string, key []byte) (string, error) {
	keeper, err := k.open(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap master key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
