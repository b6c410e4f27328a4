package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
	"time"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const digits = "0123456789"

func init() {
	var b [8]byte
	_, err := crand.Read(b[:])
	if err != nil {
		mrand.Seed(time.Now().UnixNano())
		return
	}
	mrand.Seed(int64(binary.LittleEndian.Uint64(b[:])))
}

func String(length int) string {
	return fromCharset(charset, length)
}

// Code generates an uppercase alphanumeric code, used for email
// verification tokens.
func Code(length int) string {
	return fromCharset(codeCharset, length)
}

// OTP generates a digits-only one-time password.
func OTP(length int) string {
	return fromCharset(digits, length)
}

func fromCharset(cs string, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = cs[mrand.Intn(len(cs))]
	}
	return string(b)
}

func StringSecure(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		l := big.NewInt(int64(len(charset)))
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
