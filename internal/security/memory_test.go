// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"testing"
)

func TestNewSecureString_StoresValue(t *testing.T) {
	ss := NewSecureString("hello")
	if ss.String() != "hello" {
		t.Errorf("expected 'hello', got %q", ss.String())
	}
	if ss.Len() != 5 {
		t.Errorf("expected length 5, got %d", ss.Len())
	}
}

func TestSecureString_Clear_ZeroesData(t *testing.T) {
	ss := NewSecureString("sensitive-data")
	backing := ss.Bytes()
	ss.Clear()
	if ss.String() != "" {
		t.Errorf("expected empty string after Clear, got %q", ss.String())
	}
	for i, b := range backing {
		if b != 0 {
			t.Errorf("byte %d not zeroed after Clear", i)
		}
	}
}

func TestSecureString_Clear_Idempotent(t *testing.T) {
	ss := NewSecureString("data")
	ss.Clear()
	// Clearing twice must not panic.
	ss.Clear()
}

func TestSecureString_BytesSharesBacking(t *testing.T) {
	ss := NewSecureString("pw")
	b := ss.Bytes()
	if string(b) != "pw" {
		t.Errorf("expected backing bytes 'pw', got %q", string(b))
	}
}

func TestWipe(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	Wipe(key)
	for i, b := range key {
		if b != 0 {
			t.Errorf("byte %d not wiped", i)
		}
	}
}
