// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"strconv"
	"strings"
)

// validLuhn reports whether the digit string passes the Luhn checksum.
// Rejects arbitrary digit runs that merely look card-shaped.
func validLuhn(number string) bool {
	sum := 0
	alternate := false

	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')

		if alternate {
			digit *= 2
			if digit > 9 {
				digit = digit/10 + digit%10
			}
		}

		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}

// nationalIDWeights and nationalIDCheckChars implement the ISO 7064
// MOD 11-2 check digit used by 18-digit resident identity numbers.
var (
	nationalIDWeights    = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	nationalIDCheckChars = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}
)

// validNationalID verifies the MOD 11-2 check character of an 18-char
// identity number candidate.
func validNationalID(id string) bool {
	if len(id) != 18 {
		return false
	}

	sum := 0
	for i := 0; i < 17; i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * nationalIDWeights[i]
	}

	check := nationalIDCheckChars[sum%11]
	last := id[17]
	if last == 'x' {
		last = 'X'
	}
	return last == check
}

// validIPv4 verifies every dotted octet is in range. The regex alone
// accepts values like 999.1.1.1.
func validIPv4(addr string) bool {
	parts := strings.Split(addr, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		if len(part) > 1 && part[0] == '0' {
			// Leading zeros are ambiguous (octal in some parsers).
			return false
		}
	}
	return true
}

// creditCodeValues maps the GB 32100-2015 alphabet to its numeric values.
// The letters I, O, S, V and Z are intentionally absent.
const creditCodeAlphabet = "0123456789ABCDEFGHJKLMNPQRTUWXY"

var creditCodeWeights = [17]int{1, 3, 9, 27, 19, 26, 16, 17, 20, 29, 25, 13, 8, 24, 10, 30, 28}

// validCreditCode verifies the mod-31 check character of an 18-char
// unified social credit code candidate.
func validCreditCode(code string) bool {
	if len(code) != 18 {
		return false
	}

	sum := 0
	for i := 0; i < 17; i++ {
		v := strings.IndexByte(creditCodeAlphabet, code[i])
		if v < 0 {
			return false
		}
		sum += v * creditCodeWeights[i]
	}

	checkValue := (31 - sum%31) % 31
	return code[17] == creditCodeAlphabet[checkValue]
}
