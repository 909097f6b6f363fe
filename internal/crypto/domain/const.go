package domain

// Parameters of the payload format. Changing any of them requires a new
// PayloadVersion and a registered legacy decrypter for the old one.
const (
	// PayloadVersion is written into every new EncryptedPayload.
	//
	// Payloads carrying a different version are routed to a registered legacy
	// decrypter. Without one, decryption fails with ErrUnsupportedPayloadVersion.
	PayloadVersion = "1.0"

	// KeySize is the size in bytes of the master key and of every derived key.
	// AES-256 requires 32 bytes.
	KeySize = 32

	// SaltSize is the size in bytes of the random per-payload salt fed into PBKDF2.
	SaltSize = 64

	// IVSize is the size in bytes of the AES-GCM initialization vector.
	//
	// GCM's native nonce is 12 bytes. A 16-byte IV is accepted by GCM through
	// GHASH and is kept for compatibility with previously written payloads.
	IVSize = 16

	// TagSize is the size in bytes of the GCM authentication tag. The tag is
	// carried separately from the ciphertext in the payload.
	TagSize = 16

	// PBKDF2Iterations is the iteration count of the SHA-512 key derivation.
	PBKDF2Iterations = 100000
)
