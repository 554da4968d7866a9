package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup/clients"
	"catchup/clients/slack"
)

func TestCheckAuth(t *testing.T) {
	mockClient := slack.NewMockSlackClient()
	require.NoError(t, checkAuth(context.Background(), mockClient, "bot"))

	mockClient.MockAuthTest = func(ctx context.Context) (*clients.SlackAuthTestResponse, error) {
		return nil, fmt.Errorf("invalid_auth")
	}
	err := checkAuth(context.Background(), mockClient, "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user token")
	assert.Contains(t, err.Error(), "invalid_auth")
}
