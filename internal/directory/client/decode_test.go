package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-enricher/internal/common/errors"
)

func TestDecodePeople_UnknownObjectShape(t *testing.T) {
	// Valid JSON that fits neither the envelope nor the bare array.
	records, err := decodePeople([]byte(`{"users": []}`))

	assert.Nil(t, records)
	require.True(t, errors.IsType(err, errors.ErrTypeDecode))
	assert.Contains(t, err.Error(), "no known schema")
}

func TestDecodePeople_MalformedJSON(t *testing.T) {
	records, err := decodePeople([]byte(`{"employees": [}`))

	assert.Nil(t, records)
	require.True(t, errors.IsType(err, errors.ErrTypeDecode))
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDecodeNamedList_WrapperNamePreferred(t *testing.T) {
	list, err := decodeNamedList([]byte(`{"name": "Work Titles", "values": []}`), "work titles")

	require.NoError(t, err)
	assert.Equal(t, "Work Titles", list.Name)
}

func TestDecodeNamedList_BareArrayUsesRequestedCategory(t *testing.T) {
	list, err := decodeNamedList([]byte(`[{"id": "T1", "name": "Engineer"}]`), "work titles")

	require.NoError(t, err)
	assert.Equal(t, "work titles", list.Name)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "T1", list.Items[0].ID)
}
