package command_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/client"
	"github/chapool/go-near/internal/util/command"
)

func TestWithClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"chain_id":"testnet","sync_info":{"latest_block_height":42}}}`)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	cfg := config.Service{RPCURL: srv.URL}

	var testError = errors.New("test error")

	resultErr := command.WithClient(ctx, cfg, func(ctx context.Context, c *client.Client) error {
		status, err := c.Status(ctx)
		require.NoError(t, err)

		assert.Equal(t, "testnet", status.ChainID)

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestNewSubcommandGroup(t *testing.T) {
	group := command.NewSubcommandGroup("parent")
	assert.Equal(t, "parent", group.Use)
	assert.True(t, group.Runnable())
}
