package automater

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const signParam = "sign"

// Canonicalize returns the parameters that take part in signing: "sign" is
// removed and empty values are dropped. Keys keep url.Values semantics, so
// Encode already emits them in sorted order.
func Canonicalize(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for key, values := range params {
		if key == signParam {
			continue
		}
		for _, v := range values {
			if isEmpty(v) {
				continue
			}
			out[key] = append(out[key], v)
		}
	}
	return out
}

// Sign computes the request signature for already canonical params.
func Sign(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		parts = append(parts, params[key]...)
	}
	parts = append(parts, secret)

	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// isEmpty follows the loose emptiness of the upstream API: blank strings
// and a literal zero are never sent.
func isEmpty(v string) bool {
	return v == "" || v == "0"
}
