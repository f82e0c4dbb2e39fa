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

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	cleanup, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
}

// Init must not fail or block when the collector is down.
func TestInitUnreachableCollector(t *testing.T) {
	ctx := context.Background()
	for _, url := range []string{"127.0.0.1:37999", "http://127.0.0.1:37999"} {
		cleanup, err := Init(ctx, Config{
			Enabled:     true,
			ExporterURL: url,
			ServiceName: "parkledger-test",
		})
		require.NoError(t, err, url)

		_, span := GetTracer().Start(ctx, "invoke_purchase_hourly_ticket")
		span.End()
		cleanup()
	}
}

func TestGetTracer(t *testing.T) {
	tracer := GetTracer()
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "test-span")
	span.End()
}
