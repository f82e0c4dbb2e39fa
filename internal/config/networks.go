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

package config

import "github.com/stellar/go/network"

const (
	NetworkPublic     = "public"
	NetworkTestnet    = "testnet"
	NetworkFuturenet  = "futurenet"
	NetworkStandalone = "standalone"
)

var passphrases = map[string]string{
	NetworkPublic:     network.PublicNetworkPassphrase,
	NetworkTestnet:    network.TestNetworkPassphrase,
	NetworkFuturenet:  "Test SDF Future Network ; October 2022",
	NetworkStandalone: "Standalone Network ; February 2017",
}

// PassphraseFor returns the passphrase that authorization payloads are bound to
// on the named network.
func PassphraseFor(name string) (string, bool) {
	p, ok := passphrases[name]
	return p, ok
}
