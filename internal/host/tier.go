// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package host

import "fmt"

// Tier is a storage durability class.
type Tier uint8

const (
	// Instance holds contract-wide configuration and shares the contract's TTL.
	Instance Tier = iota
	// Persistent entries live until explicitly removed; they are archived, not
	// lost, when their TTL lapses.
	Persistent
	// Temporary entries are dropped for good once their TTL lapses.
	Temporary
)

var tierNames = [...]string{"instance", "persistent", "temporary"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// Evicts reports whether entries of the tier disappear once their TTL lapses.
// Lapsed Instance and Persistent entries are archived: still readable, with
// zero TTL left, and restored to a fresh lifetime by the next write.
func (t Tier) Evicts() bool { return t == Temporary }

func ParseTier(s string) (Tier, error) {
	for i, n := range tierNames {
		if n == s {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown storage tier %q", s)
}

// Tiers lists every tier in a stable order.
func Tiers() []Tier {
	return []Tier{Instance, Persistent, Temporary}
}

// TTLConfig holds the default lifetime, in seconds, given to new entries.
type TTLConfig struct {
	Instance   uint64
	Persistent uint64
	Temporary  uint64
}

const day = 24 * 60 * 60

func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Instance:   400 * day,
		Persistent: 400 * day,
		Temporary:  day,
	}
}

func (c TTLConfig) For(t Tier) uint64 {
	switch t {
	case Instance:
		return c.Instance
	case Persistent:
		return c.Persistent
	default:
		return c.Temporary
	}
}
