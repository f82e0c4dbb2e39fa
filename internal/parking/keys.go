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

package parking

import "github.com/dotandev/parkledger/internal/host"

// Storage layout. Per-plate records use a category prefix plus the
// normalised plate.
const (
	// Instance tier.
	keyInitialized = "initialized"
	keyLayout      = "layout"
	keyAdmins      = "admins"
	keyHourlyPrice = "hourly_price"
	keyAnnualPrice = "annual_price"
	keyTotalSpots  = "total_spots"

	// Persistent tier.
	keyRevenue   = "revenue"
	keyFineIndex = "fine_index"
	prefixParked = "parked:"

	// Temporary tier.
	keyGuard    = "guard"
	keyProposal = "w_prop"

	prefixTicket = "ticket:"
	prefixPass   = "pass:"
	prefixFine   = "fine:"
)

var instanceKeys = []string{
	keyInitialized, keyLayout, keyAdmins, keyHourlyPrice, keyAnnualPrice, keyTotalSpots,
}

type recordKey struct {
	tier host.Tier
	key  string
}

func ticketKey(plate string) recordKey { return recordKey{host.Temporary, prefixTicket + plate} }

// parkedKey holds the durable copy of an unexited ticket.
func parkedKey(plate string) recordKey { return recordKey{host.Persistent, prefixParked + plate} }

func passKey(plate string) recordKey { return recordKey{host.Persistent, prefixPass + plate} }

func fineKey(plate string) recordKey { return recordKey{host.Persistent, prefixFine + plate} }
