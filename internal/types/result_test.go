package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWritten(t *testing.T) {
	r := &Report{
		Files: []FileRecord{
			{Path: "a.yaml", Bytes: 10, Written: true},
			{Path: "b.yaml", Bytes: 5, Written: true},
			{Path: "c.yaml", Bytes: 7, Written: false},
		},
	}

	files, bytes := r.Written()
	assert.Equal(t, 2, files)
	assert.Equal(t, 15, bytes)

	files, bytes = (&Report{}).Written()
	assert.Zero(t, files)
	assert.Zero(t, bytes)
}

func TestReportJSON(t *testing.T) {
	r := Report{
		Profile: "central",
		Files: []FileRecord{
			{Path: "apps/bookinfo/base/bookinfo-deployment.yaml", Source: FileSourceRemote, Written: true},
		},
		Fetch: FetchOutcome{URL: "https://example.com/bookinfo.yaml", Attempts: 1},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, `"source":"remote"`)
	assert.NotContains(t, out, "warnings")
	assert.NotContains(t, out, "statusCode")
	assert.NotContains(t, out, `"error"`)
}

func TestManifestContentNotSerialized(t *testing.T) {
	m := Manifest{Name: "tempo", Kind: "TempoStack", Content: map[string]interface{}{"spec": "x"}}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"tempo","kind":"TempoStack"}`, string(b))
}
