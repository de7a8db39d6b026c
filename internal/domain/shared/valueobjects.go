// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "strconv"

// MemberID is the platform identifier of a guild member (a numeric snowflake,
// carried as a string because it exceeds float-safe integer range in transit).
type MemberID string

// IsValid checks that the member ID is non-empty.
func (m MemberID) IsValid() bool {
	return m != ""
}

// String returns the string representation.
func (m MemberID) String() string {
	return string(m)
}

// ChannelID is the platform identifier of a channel. Empty means "no channel",
// which is how voice disconnects are expressed by the gateway.
type ChannelID string

// IsValid checks that the channel ID is non-empty.
func (c ChannelID) IsValid() bool {
	return c != ""
}

// String returns the string representation.
func (c ChannelID) String() string {
	return string(c)
}

// RoleID is the platform identifier of a role.
type RoleID string

// IsValid checks that the role ID is non-empty.
func (r RoleID) IsValid() bool {
	return r != ""
}

// String returns the string representation.
func (r RoleID) String() string {
	return string(r)
}

// XP represents progression points. Balances only grow through ledger grants,
// so XP is non-negative everywhere it is stored.
type XP int

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}

// String returns the decimal representation.
func (x XP) String() string {
	return strconv.Itoa(int(x))
}

// Add returns the balance after adding amount, floored at zero.
func (x XP) Add(amount XP) XP {
	result := x + amount
	if result < 0 {
		return 0
	}
	return result
}
