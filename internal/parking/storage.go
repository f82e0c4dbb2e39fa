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

import (
	"encoding/json"

	"github.com/dotandev/parkledger/internal/errors"
	"github.com/dotandev/parkledger/internal/host"
)

// get decodes the value under k. A missing entry is not an error.
func get[T any](env *host.Env, k recordKey) (T, bool, error) {
	var out T
	raw, ok, err := env.Storage().Get(k.tier, k.key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, errors.WrapUnmarshalFailed(k.tier.String()+"/"+k.key, err)
	}
	return out, true, nil
}

// mustGet is get for entries the contract requires to exist.
func mustGet[T any](env *host.Env, k recordKey) (T, error) {
	v, ok, err := get[T](env, k)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, errors.WrapNotFound(k.tier.String() + "/" + k.key)
	}
	return v, nil
}

func encode(k recordKey, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapBackend("encode "+k.key, err)
	}
	return raw, nil
}

// set stores v. Durable entries have their lifetime topped up to the full
// tier TTL.
func set(env *host.Env, k recordKey, v any) error {
	raw, err := encode(k, v)
	if err != nil {
		return err
	}
	if err := env.Storage().Put(k.tier, k.key, raw); err != nil {
		return err
	}
	if k.tier == host.Persistent {
		return extend(env, k)
	}
	return nil
}

// setTTL stores v with a lifetime of exactly ttl seconds.
func setTTL(env *host.Env, k recordKey, v any, ttl uint64) error {
	raw, err := encode(k, v)
	if err != nil {
		return err
	}
	env.Storage().PutTTL(k.tier, k.key, raw, ttl)
	return nil
}

func has(env *host.Env, k recordKey) (bool, error) {
	return env.Storage().Has(k.tier, k.key)
}

func remove(env *host.Env, k recordKey) {
	env.Storage().Remove(k.tier, k.key)
}

// extend renews k once less than half of its tier TTL remains.
func extend(env *host.Env, k recordKey) error {
	ttl := env.TTL().For(k.tier)
	return env.Storage().ExtendTTL(k.tier, k.key, ttl/2, ttl)
}

// bumpInstance keeps the contract configuration alive.
func bumpInstance(env *host.Env) error {
	for _, key := range instanceKeys {
		err := extend(env, recordKey{host.Instance, key})
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}
	}
	return nil
}
