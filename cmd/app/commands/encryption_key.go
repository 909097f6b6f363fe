package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/medmarket/phiguard/internal/crypto/domain"
	cryptoService "github.com/medmarket/phiguard/internal/crypto/service"
)

// RunCreateEncryptionKey generates a 32-byte master key and prints the
// environment variables that load it. Without a KMS key URI the key is printed
// as hex; with one it is wrapped by the KMS and printed as base64 ciphertext.
//
// Never use base64key:// URIs in production.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if kmsKeyURI == "" {
		logger.Warn("encryption key generated without KMS wrapping")
		_, _ = fmt.Fprintln(writer, "# Store this value in a secrets manager. It protects every PHI payload.")
		_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", hex.EncodeToString(key))
		return nil
	}

	return writeWrappedKey(ctx, kmsService, writer, kmsKeyURI, key)
}

// RunWrapEncryptionKey wraps an existing hex master key with the KMS so a
// deployment can move from a plain ENCRYPTION_KEY to KMS_KEY_URI without
// re-encrypting stored payloads.
func RunWrapEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	hexKey, kmsKeyURI string,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf("--kms-key-uri is required")
	}
	mk, err := cryptoDomain.ParseMasterKey(hexKey)
	if err != nil {
		return fmt.Errorf("invalid encryption key: %w", err)
	}
	defer mk.Close()

	return writeWrappedKey(ctx, kmsService, writer, kmsKeyURI, mk.Key)
}

func writeWrappedKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	kmsKeyURI string,
	key []byte,
) error {
	wrapped, err := kmsService.WrapKey(ctx, kmsKeyURI, key)
	if err != nil {
		return fmt.Errorf("failed to wrap encryption key: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Encryption key wrapped by KMS")
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", wrapped)
	return nil
}
