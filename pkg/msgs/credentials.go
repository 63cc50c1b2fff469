package msgs

import "fmt"

// Credential limits.
const (
	MaxSSIDLen     = 32
	MaxPasswordLen = 63
)

// Credentials is a network name and passphrase.
type Credentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Validate checks the limits.
func (c Credentials) Validate() error {
	if len(c.SSID) > MaxSSIDLen {
		return fmt.Errorf("%w: ssid is %d bytes, max %d", ErrCredentialsTooLong, len(c.SSID), MaxSSIDLen)
	}
	if len(c.Password) > MaxPasswordLen {
		return fmt.Errorf("%w: password is %d bytes, max %d", ErrCredentialsTooLong, len(c.Password), MaxPasswordLen)
	}
	return nil
}

// AppendBinary appends [ssid_len][pwd_len][ssid][pwd].
func (c Credentials) AppendBinary(b []byte) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return b, err
	}
	b = append(b, byte(len(c.SSID)), byte(len(c.Password)))
	b = append(b, c.SSID...)
	return append(b, c.Password...), nil
}

// DecodeCredentials decodes a credentials payload. Both declared lengths are
// checked against the limits and the remaining payload before anything is
// copied. Bytes after the password are ignored.
func DecodeCredentials(payload []byte) (Credentials, error) {
	if len(payload) < 2 {
		return Credentials{}, ErrShortFrame
	}
	ssidLen, pwdLen := int(payload[0]), int(payload[1])
	rest := payload[2:]
	if ssidLen > MaxSSIDLen || ssidLen > len(rest) {
		return Credentials{}, &LengthError{Field: "ssid", Declared: ssidLen, Remaining: min(len(rest), MaxSSIDLen)}
	}
	ssid, rest := rest[:ssidLen], rest[ssidLen:]
	if pwdLen > MaxPasswordLen || pwdLen > len(rest) {
		return Credentials{}, &LengthError{Field: "password", Declared: pwdLen, Remaining: min(len(rest), MaxPasswordLen)}
	}
	return Credentials{SSID: string(ssid), Password: string(rest[:pwdLen])}, nil
}
