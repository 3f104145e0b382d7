package alipay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// SignType is the only digest the gateway is configured for.
const SignType = "MD5"

// Canonicalize renders fields as the signing input: sign, sign_type and empty
// values dropped, keys in byte order, "k=v" pairs joined by "&".
func Canonicalize(fields FieldSet) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == KeySign || k == KeySignType || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + fields[k]
	}
	return strings.Join(pairs, "&")
}

// Sign returns a copy of fields carrying sign and sign_type. Any sign or
// sign_type already present is replaced.
func Sign(fields FieldSet, secret string) FieldSet {
	signed := fields.Without(KeySign, KeySignType)
	signed[KeySign] = digest(Canonicalize(signed), secret)
	signed[KeySignType] = SignType
	return signed
}

// Verify reports whether claimed is the signature of fields under secret.
// Callers strip sign and sign_type first; Canonicalize ignores them regardless.
func Verify(fields FieldSet, claimed, secret string) bool {
	expected := digest(Canonicalize(fields), secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(claimed)) == 1
}

func digest(canonical, secret string) string {
	sum := md5.Sum([]byte(canonical + secret))
	return hex.EncodeToString(sum[:])
}
