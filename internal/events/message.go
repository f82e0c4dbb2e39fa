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

package events

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/parkledger/internal/host"
)

// Message is the broker form of a host.Event. Topics and Data are base64
// XDR ScVals; Name and Subject repeat the leading symbols for consumers that
// do not decode XDR.
type Message struct {
	Contract  string   `json:"contract"`
	Function  string   `json:"function"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject,omitempty"`
	Timestamp uint64   `json:"ledger_timestamp"`
	Topics    []string `json:"topics"`
	Data      string   `json:"data"`
}

func symbol(v xdr.ScVal) string {
	if v.Type == xdr.ScValTypeScvSymbol && v.Sym != nil {
		return string(*v.Sym)
	}
	return ""
}

// NewMessage encodes e.
func NewMessage(e host.Event) (Message, error) {
	m := Message{
		Contract:  e.Contract,
		Function:  e.Function,
		Name:      e.Name(),
		Timestamp: e.Timestamp,
	}
	if len(e.Topics) > 1 {
		m.Subject = symbol(e.Topics[1])
	}
	for i, t := range e.Topics {
		enc, err := xdr.MarshalBase64(t)
		if err != nil {
			return Message{}, fmt.Errorf("encode topic %d: %w", i, err)
		}
		m.Topics = append(m.Topics, enc)
	}
	data, err := xdr.MarshalBase64(e.Data)
	if err != nil {
		return Message{}, fmt.Errorf("encode data: %w", err)
	}
	m.Data = data
	return m, nil
}

// DecodeData returns the event data value.
func (m Message) DecodeData() (xdr.ScVal, error) {
	var v xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(m.Data, &v); err != nil {
		return xdr.ScVal{}, err
	}
	return v, nil
}
