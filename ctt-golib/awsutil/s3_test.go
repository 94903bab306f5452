package awsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	loc, err := ParseURI("s3://ctt-data/runs/day-records/")
	require.NoError(t, err)
	assert.Equal(t, Location{Bucket: "ctt-data", Key: "runs/day-records/"}, loc)
	assert.Equal(t, "s3://ctt-data/runs/day-records/", loc.String())

	_, err = ParseURI("/local/path")
	assert.Error(t, err)
	_, err = ParseURI("s3:///no-bucket")
	assert.Error(t, err)

	assert.True(t, IsS3URI("s3://bucket/key"))
	assert.False(t, IsS3URI("bucket/key"))
}
