package database

import (
	"errors"
	"testing"

	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisioner_Provision(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().WithDatabase("shop", "shop_user").Build(), fakes)

	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.Equal(t, []string{
		"database.EnsureDatabase shop",
		"database.EnsureUser shop_user",
		"database.Grant shop_user shop",
	}, fakes.Calls())
}

func TestProvisioner_UserFailure(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices().FailOn("database.EnsureUser", errors.New("Error 1396"))
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user wpu_example_com")
	assert.False(t, fakes.Called("database.Grant"))
}
