package dto

// DecryptResponse contains the decrypted value.
type DecryptResponse struct {
	Data    any    `json:"data"`
	Purpose string `json:"purpose"`
}
