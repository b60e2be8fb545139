// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

// SecureString wraps sensitive data (passwords, recovered span text) with
// best-effort memory scrubbing on Clear.
//
// Limitations: Go's garbage collector may move or copy memory at any time, and
// string-to-[]byte conversions create immutable copies that cannot be zeroed.
// Clear() zeroes the internal byte slice, which reduces the window of
// exposure, but cannot guarantee that no copies exist elsewhere in the heap.
type SecureString struct {
	data []byte
}

// NewSecureString creates a new SecureString by copying s into a mutable byte slice.
func NewSecureString(s string) *SecureString {
	data := make([]byte, len(s))
	copy(data, s)
	return &SecureString{data: data}
}

// String returns the string value. Use sparingly; each call creates an
// immutable copy that cannot be zeroed by Clear.
func (ss *SecureString) String() string {
	return string(ss.data)
}

// Bytes returns the backing byte slice without copying. The caller must not
// retain the slice past Clear; key derivation reads it in place so the
// password never needs an extra heap copy.
func (ss *SecureString) Bytes() []byte {
	return ss.data
}

// Len returns the byte length of the stored value.
func (ss *SecureString) Len() int {
	return len(ss.data)
}

// Clear overwrites the internal byte slice with zeros and releases it.
func (ss *SecureString) Clear() {
	Wipe(ss.data)
	ss.data = nil
}

// Wipe overwrites b with zeros. Used for derived keys and plaintext record
// buffers once they have been sealed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
