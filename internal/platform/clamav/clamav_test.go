package clamav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lptest "github.com/imamik/lempress/internal/testing"
)

func TestScanner_UpdateSignatures(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner()
	s := New(r)

	require.NoError(t, s.UpdateSignatures(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{
		"systemctl stop clamav-freshclam",
		"freshclam --quiet",
		"systemctl enable --now clamav-freshclam",
		"systemctl enable --now clamav-daemon",
	}, r.CommandLines())
}

func TestScanner_UpToDate(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("freshclam", 1, "daily.cld database is up-to-date")
	require.NoError(t, New(r).UpdateSignatures(context.Background()))
}

func TestScanner_UpdateFailure(t *testing.T) {
	t.Parallel()
	r := lptest.NewFakeRunner().Fail("freshclam", 2, "Can't connect to port 80 of host database.clamav.net")
	s := New(r)

	err := s.UpdateSignatures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update virus signatures")
	assert.False(t, r.Ran("systemctl enable --now clamav-freshclam"))
}
