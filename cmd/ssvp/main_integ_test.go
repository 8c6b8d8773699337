// build +integration
package main_test

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"ssvp/internal"
	"ssvp/internal/app/apps"
	"ssvp/internal/app/cfg"

	"github.com/stretchr/testify/require"
)

func TestServerApp(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	t.Setenv("SSVP_HOST", "127.0.0.1")
	t.Setenv("SSVP_PORT", strconv.Itoa(port))
	t.Setenv("SSVP_FIXTURES", filepath.Join("..", "..", "fixtures.toml"))
	require.NoError(t, internal.ValidateEnv())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s, err := apps.NewServerApp(
			cfg.HostFromEnv(),
			cfg.PortFromEnv(),
			cfg.ThresholdFromEnv(),
			cfg.ReadTimeoutFromEnv(),
			cfg.MaxSessionsFromEnv(),
			cfg.HealthPortFromEnv(),
		)
		require.NoError(t, err)
		require.NoError(t, s.Run(ctx, nil))
	}()
	go func() {
		defer wg.Done()
		require.Eventually(t, func() bool {
			conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
			if err != nil {
				return false
			}
			conn.Close()
			return true
		}, 2*time.Second, 10*time.Millisecond)
		c, err := apps.NewClientApp(
			cfg.HostFromEnv(),
			cfg.PortFromEnv(),
			cfg.DataFromEnv(),
			cfg.FixturesFromEnv(),
			cfg.KillswitchFromEnv(),
		)
		require.NoError(t, err)
		require.NoError(t, c.Run(ctx, []string{"success"}))
		cancel()
	}()
	wg.Wait()
}
