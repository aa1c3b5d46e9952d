package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindColumns(t *testing.T) {
	for _, k := range AllKinds() {
		cols := k.Columns()
		assert.NotEmpty(t, cols, "kind %s", k)
		assert.Equal(t, ColCompanyURL, cols[0], "kind %s", k)
	}
	assert.Nil(t, Kind("bogus").Columns())
}

func TestKindTableFile(t *testing.T) {
	assert.Equal(t, "generalinfo.csv", KindGeneralInfo.TableFile())
	assert.Equal(t, "price.csv", KindPrice.TableFile())
	assert.Equal(t, "contact.csv", KindContact.TableFile())
}

func TestGeneralInfoTaggedB2B(t *testing.T) {
	assert.False(t, GeneralInfo{}.TaggedB2B())
	assert.True(t, GeneralInfo{B2BKeywords: []string{"b2b"}}.TaggedB2B())
}
